// Package handlers serves the loopback endpoints the mailbox OAuth popup lands
// on when the provider redirects back.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"go.uber.org/zap"
)

const CallbackPath = "/oauth/callback"

// CallbackServer receives OAuth results on a loopback address and hands them
// to whoever is subscribed. Messages from other origins are refused.
type CallbackServer struct {
	addr   string
	log    *zap.Logger
	engine *gin.Engine

	httpServer *http.Server
	origin     string

	mu     sync.Mutex
	subs   map[uint64]func(dtos.CallbackMessage)
	nextID uint64
}

func NewCallbackServer(addr string, log *zap.Logger) *CallbackServer {
	gin.SetMode(gin.ReleaseMode)
	s := &CallbackServer{
		addr:   addr,
		log:    log,
		origin: "http://" + addr,
		subs:   make(map[uint64]func(dtos.CallbackMessage)),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: s.allowedOrigin,
		AllowMethods:    []string{http.MethodGet, http.MethodPost},
		AllowHeaders:    []string{"Origin", "Content-Length", "Content-Type"},
		MaxAge:          10 * time.Minute,
	}))
	r.SetHTMLTemplate(callbackPage)

	r.GET("/healthz", HealthCheck)
	r.GET(CallbackPath, s.Callback)
	r.POST("/oauth/message", s.sameOrigin, s.Message)

	s.engine = r
	return s
}

// Handler exposes the router, mostly for tests.
func (s *CallbackServer) Handler() http.Handler { return s.engine }

// Start binds the listener and serves in the background. With port 0 the
// chosen port is reflected in CallbackURL afterwards.
func (s *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.origin = "http://" + ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Callback server stopped", zap.Error(err))
		}
	}()
	s.log.Debug("Callback server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

func (s *CallbackServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("callback server shutdown failed: %w", err)
	}
	return nil
}

// Origin is the scheme://host:port the server answers on.
func (s *CallbackServer) Origin() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// CallbackURL is the redirect target handed to the backend.
func (s *CallbackServer) CallbackURL() string {
	return s.Origin() + CallbackPath
}

// Subscribe registers fn for every accepted message until unsubscribe is
// called. fn runs on the request goroutine and must not block.
func (s *CallbackServer) Subscribe(fn func(dtos.CallbackMessage)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *CallbackServer) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Publish delivers msg to the current subscribers and returns how many got it.
func (s *CallbackServer) Publish(msg dtos.CallbackMessage) int {
	s.mu.Lock()
	fns := make([]func(dtos.CallbackMessage), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
	return len(fns)
}

// Callback is GET /oauth/callback, the page the provider redirects the popup
// to. It accepts type=oauth-success|oauth-error or the shorter
// status=success|error, and a bare OAuth error=... as a failure.
func (s *CallbackServer) Callback(c *gin.Context) {
	msg := dtos.CallbackMessage{
		Type:     c.Query("type"),
		Provider: c.Query("provider"),
		Message:  c.Query("message"),
		Email:    c.Query("email"),
		State:    c.Query("state"),
	}
	if msg.Type == "" {
		switch strings.ToLower(c.Query("status")) {
		case "success", "connected":
			msg.Type = dtos.MessageOAuthSuccess
		case "error", "failed":
			msg.Type = dtos.MessageOAuthError
		}
	}
	if oauthErr := c.Query("error"); oauthErr != "" {
		msg.Type = dtos.MessageOAuthError
		if msg.Message == "" {
			msg.Message = c.DefaultQuery("error_description", oauthErr)
		}
	}

	if err := binding.Validator.ValidateStruct(&msg); err != nil {
		s.log.Warn("Rejected OAuth callback", zap.Error(err))
		c.HTML(http.StatusBadRequest, "callback", gin.H{
			"Title":  "Something went wrong",
			"Detail": "The sign-in response was incomplete. Close this window and try again.",
		})
		return
	}

	delivered := s.Publish(msg)
	s.log.Info("OAuth callback received",
		zap.String("provider", msg.Provider),
		zap.String("type", msg.Type),
		zap.Int("subscribers", delivered))

	page := gin.H{"Title": "Mailbox connected", "Detail": "You can close this window."}
	if msg.Type == dtos.MessageOAuthError {
		page = gin.H{"Title": "Connection failed", "Detail": msg.Message}
	}
	c.HTML(http.StatusOK, "callback", page)
}

// Message is POST /oauth/message for scripts served from this origin.
func (s *CallbackServer) Message(c *gin.Context) {
	var msg dtos.CallbackMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message: " + err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"delivered": s.Publish(msg)})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *CallbackServer) allowedOrigin(origin string) bool {
	own := s.Origin()
	if origin == own {
		return true
	}
	// localhost and 127.0.0.1 name the same loopback listener
	_, port, err := net.SplitHostPort(strings.TrimPrefix(own, "http://"))
	return err == nil && origin == "http://localhost:"+port
}

// sameOrigin rejects requests whose Origin header names another site. cors
// only guards browsers that honour preflight; this covers simple requests.
func (s *CallbackServer) sameOrigin(c *gin.Context) {
	if origin := c.GetHeader("Origin"); origin != "" && !s.allowedOrigin(origin) {
		s.log.Warn("Dropped message from foreign origin", zap.String("origin", origin))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
		return
	}
	c.Next()
}

func (s *CallbackServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("Callback request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

var callbackPage = template.Must(template.New("callback").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em">
<h2>{{.Title}}</h2>
<p>{{.Detail}}</p>
<script>setTimeout(function () { window.close() }, 1500)</script>
</body>
</html>`))
