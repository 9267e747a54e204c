package main

import (
	"fmt"

	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage resumes and cover letters",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	RunE:  runDocumentsList,
}

var documentsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsUpload,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var documentsPrimaryCmd = &cobra.Command{
	Use:   "primary <document-id>",
	Short: "Use a document as the default for applications",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsPrimary,
}

var documentType string

func init() {
	documentsUploadCmd.Flags().StringVarP(&documentType, "type", "t", "resume", "resume, cover_letter or other")

	documentsCmd.AddCommand(documentsListCmd, documentsUploadCmd, documentsDeleteCmd, documentsPrimaryCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	docs, err := a.client.ListDocuments(cmd.Context())
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		primary := ""
		if d.IsPrimary {
			primary = "*"
		}
		rows = append(rows, []string{primary, d.ID, d.Name, d.Type, format.Bytes(d.Size), format.Date(d.UploadedAt)})
	}
	printTable(cmd.OutOrStdout(), []string{"", "ID", "Name", "Type", "Size", "Uploaded"}, rows)
	return nil
}

func runDocumentsUpload(cmd *cobra.Command, args []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	doc, err := a.client.UploadDocument(cmd.Context(), args[0], documentType)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) as %s.\n", doc.Name, format.Bytes(doc.Size), doc.ID)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	if err := a.client.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
	return nil
}

func runDocumentsPrimary(cmd *cobra.Command, args []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	doc, err := a.client.SetPrimaryDocument(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now your primary document.\n", doc.Name)
	return nil
}
