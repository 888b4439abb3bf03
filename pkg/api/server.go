// Package api provides the HTTP control surface of a running instrument:
// parameters, derived labels and state blobs.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gruvah/kickbridge/pkg/framework/debug"
	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/framework/state"
	"github.com/gruvah/kickbridge/pkg/kick"
	"github.com/gruvah/kickbridge/pkg/midi"
)

// maxStateSize bounds PUT /state bodies.
const maxStateSize = 1 << 20

// Param is the JSON view of one parameter.
type Param struct {
	Index   int     `json:"index"`
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Unit    string  `json:"unit,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Value   float64 `json:"value"`
	// Normalized is Value mapped to 0..1 over the declared range.
	Normalized float64  `json:"normalized"`
	Text       string   `json:"text"`
	Options    []string `json:"options,omitempty"`
}

// Slot describes the note a voice slot plays.
type Slot struct {
	Slot      int     `json:"slot"`
	Label     string  `json:"label"`
	Pitch     uint8   `json:"pitch"`
	Frequency float64 `json:"frequency"`
}

// ParamUpdate is the body of PUT /api/v1/params/:id. Exactly one of Value
// and Text must be set.
type ParamUpdate struct {
	Value *float64 `json:"value"`
	Text  *string  `json:"text"`
}

// StatsFunc reports audio callback timing.
type StatsFunc func() debug.DeadlineStats

// Server serves one plugin instance.
type Server struct {
	plugin *kick.Plugin
	stats  StatsFunc
	log    *debug.Logger
	engine *gin.Engine
}

// NewServer builds the routes. stats may be nil.
func NewServer(p *kick.Plugin, stats StatsFunc, log *debug.Logger) *Server {
	if log == nil {
		log = debug.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{plugin: p, stats: stats, log: log.With("api")}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), corsMiddleware())

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", s.health)
		v1.GET("/info", s.info)
		v1.GET("/params", s.listParams)
		v1.GET("/params/:id", s.getParam)
		v1.PUT("/params/:id", s.putParam)
		v1.GET("/labels", s.labels)
		v1.GET("/state", s.getState)
		v1.PUT("/state", s.putState)
		v1.POST("/reset", s.reset)
		v1.GET("/stats", s.getStats)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "kickbridge",
		"prepared": s.plugin.Prepared(),
	})
}

func (s *Server) info(c *gin.Context) {
	info := s.plugin.GetInfo()
	c.JSON(http.StatusOK, gin.H{
		"id":          info.ID,
		"uid":         fmt.Sprintf("%X", info.UID()),
		"name":        info.Name,
		"version":     info.Version,
		"vendor":      info.Vendor,
		"category":    info.Category,
		"sample_rate": s.plugin.SampleRate(),
		"channels":    s.plugin.Buses().MainOutputChannels(),
	})
}

func view(p *param.Parameter) Param {
	return Param{
		Index:      p.Index,
		ID:         p.ID,
		Name:       p.Name,
		Kind:       p.Kind.String(),
		Unit:       p.Unit,
		Min:        p.Min,
		Max:        p.Max,
		Default:    p.DefaultValue,
		Value:      p.Value(),
		Normalized: p.Normalized(),
		Text:       p.Text(),
		Options:    p.Options,
	}
}

func (s *Server) listParams(c *gin.Context) {
	all := s.plugin.Parameters().All()
	out := make([]Param, len(all))
	for i, p := range all {
		out[i] = view(p)
	}
	c.JSON(http.StatusOK, gin.H{"params": out})
}

func (s *Server) lookup(c *gin.Context) (*param.Parameter, bool) {
	p, err := s.plugin.Parameters().Lookup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return p, true
}

func (s *Server) getParam(c *gin.Context) {
	if p, ok := s.lookup(c); ok {
		c.JSON(http.StatusOK, view(p))
	}
}

func (s *Server) putParam(c *gin.Context) {
	p, ok := s.lookup(c)
	if !ok {
		return
	}
	var req ParamUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	switch {
	case req.Value != nil && req.Text == nil:
		_, err = s.plugin.SetParameter(p.ID, *req.Value)
	case req.Text != nil && req.Value == nil:
		_, err = s.plugin.SetText(p.ID, *req.Text)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of value and text is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view(p))
}

func (s *Server) labels(c *gin.Context) {
	l := s.plugin.Labels()
	slots := make([]Slot, len(l))
	for i, label := range l {
		note := s.plugin.Pitch(i + 1)
		slots[i] = Slot{Slot: i + 1, Label: label, Pitch: note, Frequency: midi.NoteToFrequency(note, 0)}
	}
	c.JSON(http.StatusOK, gin.H{"labels": l[:], "slots": slots})
}

func (s *Server) getState(c *gin.Context) {
	blob, err := s.plugin.SaveState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", blob)
}

func (s *Server) putState(c *gin.Context) {
	blob, err := io.ReadAll(io.LimitReader(c.Request.Body, maxStateSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.plugin.RestoreState(blob); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, state.ErrInvalidState) || errors.Is(err, state.ErrVersionTooNew) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	l := s.plugin.Labels()
	c.JSON(http.StatusOK, gin.H{"labels": l[:]})
}

func (s *Server) reset(c *gin.Context) {
	s.plugin.Reset()
	c.Status(http.StatusNoContent)
}

func (s *Server) getStats(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no audio stream"})
		return
	}
	st := s.stats()
	c.JSON(http.StatusOK, gin.H{
		"callbacks": st.Callbacks,
		"missed":    st.Missed,
		"mean_ns":   st.Mean.Nanoseconds(),
		"worst_ns":  st.Worst.Nanoseconds(),
		"budget_ns": st.Budget.Nanoseconds(),
		"load":      st.Load(),
	})
}
