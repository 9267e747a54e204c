package onboarding

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// MaxResumeSize is the largest resume accepted for upload.
const MaxResumeSize = 5 << 20

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// container formats the sniffer may report for Word files it cannot tell apart
// from other documents of the same family; the extension decides for those
var containerMimes = map[string]string{
	".doc":  "application/x-ole-storage",
	".docx": "application/zip",
}

var extensionMimes = map[string]string{
	".pdf":  MimePDF,
	".doc":  MimeDOC,
	".docx": MimeDOCX,
}

type FileErrorReason string

const (
	ReasonType FileErrorReason = "type"
	ReasonSize FileErrorReason = "size"
)

// FileError rejects a resume file.
type FileError struct {
	Reason   FileErrorReason
	Detected string
	Size     int64
}

func (e *FileError) Error() string {
	switch e.Reason {
	case ReasonSize:
		return fmt.Sprintf("file is %s; resumes must be %s or smaller",
			humanize.IBytes(uint64(e.Size)), humanize.IBytes(MaxResumeSize))
	default:
		return fmt.Sprintf("unsupported file type %s: upload a PDF, DOC or DOCX file", e.Detected)
	}
}

// inspectResume validates a candidate resume without touching any draft.
func inspectResume(path string) (*ResumeFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxResumeSize {
		return nil, &FileError{Reason: ReasonSize, Size: info.Size()}
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot inspect %s: %w", path, err)
	}
	resolved, ok := resolveResumeMime(mtype, strings.ToLower(filepath.Ext(path)))
	if !ok {
		return nil, &FileError{Reason: ReasonType, Detected: mtype.String(), Size: info.Size()}
	}

	return &ResumeFile{
		Path:     path,
		Name:     filepath.Base(path),
		MimeType: resolved,
		Size:     info.Size(),
	}, nil
}

func resolveResumeMime(mtype *mimetype.MIME, ext string) (string, bool) {
	for _, allowed := range []string{MimePDF, MimeDOC, MimeDOCX} {
		if mtype.Is(allowed) {
			return allowed, true
		}
	}
	if container, ok := containerMimes[ext]; ok && mtype.Is(container) {
		return extensionMimes[ext], true
	}
	return "", false
}
