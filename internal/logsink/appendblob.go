package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/appendblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

type Config struct {
	AccountName string
	AccountKey  string // empty means use the default azure credential chain
	Container   string
	BlobName    string        // may include slashes, defaults to BlobPath(hostname, now)
	FlushEvery  time.Duration // default 2s
	Level       slog.Leveler
}

type appender interface {
	AppendBlock(ctx context.Context, body io.ReadSeekCloser, o *appendblob.AppendBlockOptions) (appendblob.AppendBlockResponse, error)
}

// Handler is a slog.Handler that batches JSON lines into an azure append blob.
type Handler struct {
	level  slog.Leveler
	ab     appender
	ch     chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	every  time.Duration
	once   sync.Once
}

func New(ctx context.Context, cfg Config) (*Handler, error) {
	if cfg.AccountName == "" || cfg.Container == "" {
		return nil, errors.New("AccountName and Container are required")
	}
	if cfg.BlobName == "" {
		host, _ := os.Hostname()
		cfg.BlobName = BlobPath(host, time.Now())
	}

	blobURL := "https://" + cfg.AccountName + ".blob.core.windows.net/" +
		url.PathEscape(cfg.Container) + "/" + cfg.BlobName // BlobName may include slashes; don’t path-escape it.

	ab, err := newClient(blobURL, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := ab.Create(ctx, nil); err != nil && !bloberror.HasCode(err, bloberror.BlobAlreadyExists) {
		return nil, fmt.Errorf("failed to create log blob %s: %w", cfg.BlobName, err)
	}
	return newHandler(ctx, ab, cfg), nil
}

func newClient(blobURL string, cfg Config) (*appendblob.Client, error) {
	if cfg.AccountKey != "" {
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, err
		}
		return appendblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
	}
	var cred azcore.TokenCredential
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("no account key and no azure credential: %w", err)
	}
	return appendblob.NewClient(blobURL, cred, nil)
}

func newHandler(ctx context.Context, ab appender, cfg Config) *Handler {
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 2 * time.Second
	}
	level := cfg.Level
	if level == nil {
		level = slog.LevelInfo
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Handler{
		level:  level,
		ab:     ab,
		ch:     make(chan []byte, 1024),
		ctx:    ctx,
		cancel: cancel,
		every:  cfg.FlushEvery,
	}
	h.wg.Add(1)
	go h.loop()
	return h
}

// Close flushes buffered lines and stops the writer. Safe to call twice.
func (h *Handler) Close() error {
	h.once.Do(func() {
		h.cancel()
		h.wg.Wait()
	})
	return nil
}

// slog.Handler

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	return h.handle(r, nil, nil)
}

func (h *Handler) handle(r slog.Record, attrs []slog.Attr, groups []string) error {
	ev := make(map[string]any, r.NumAttrs()+len(attrs)+3)
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	ev["ts"] = ts.UTC().Format(time.RFC3339Nano)
	ev["level"] = r.Level.String()
	ev["msg"] = r.Message

	// attrs added through WithAttrs sit at their own group depth; record
	// attrs go under every open group.
	target := ev
	for _, a := range attrs {
		addAttr(target, a)
	}
	for _, g := range groups {
		m, ok := target[g].(map[string]any)
		if !ok {
			m = map[string]any{}
			target[g] = m
		}
		target = m
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(target, a)
		return true
	})

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return err
	}

	select {
	case h.ch <- b.Bytes():
		return nil
	case <-h.ctx.Done():
		return h.ctx.Err()
	}
}

func addAttr(m map[string]any, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		if err, ok := a.Value.Any().(error); ok {
			m[a.Key] = err.Error()
			return
		}
		m[a.Key] = a.Value.Any()
		return
	}
	group := m
	if a.Key != "" {
		existing, ok := m[a.Key].(map[string]any)
		if !ok {
			existing = map[string]any{}
			m[a.Key] = existing
		}
		group = existing
	}
	for _, ga := range a.Value.Group() {
		addAttr(group, ga)
	}
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return (&scoped{h: h}).WithAttrs(attrs)
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return (&scoped{h: h}).WithGroup(name)
}

// scoped carries attrs and groups from WithAttrs/WithGroup.
type scoped struct {
	h      *Handler
	attrs  []slog.Attr
	groups []string
}

func (s *scoped) Enabled(ctx context.Context, l slog.Level) bool { return s.h.Enabled(ctx, l) }

func (s *scoped) Handle(_ context.Context, r slog.Record) error {
	return s.h.handle(r, s.attrs, s.groups)
}

func (s *scoped) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	next := &scoped{h: s.h, groups: s.groups}
	if len(s.groups) == 0 {
		next.attrs = append(append([]slog.Attr{}, s.attrs...), attrs...)
		return next
	}
	// nest under the open groups so the json matches slog's JSONHandler
	nested := slog.Attr{Key: s.groups[len(s.groups)-1], Value: slog.GroupValue(attrs...)}
	for i := len(s.groups) - 2; i >= 0; i-- {
		nested = slog.Attr{Key: s.groups[i], Value: slog.GroupValue(nested)}
	}
	next.attrs = append(append([]slog.Attr{}, s.attrs...), nested)
	return next
}

func (s *scoped) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return &scoped{
		h:      s.h,
		attrs:  s.attrs,
		groups: append(append([]string{}, s.groups...), name),
	}
}

// internals

func (h *Handler) loop() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.every)
	defer ticker.Stop()

	var buf []byte
	flush := func(ctx context.Context) {
		if len(buf) == 0 {
			return
		}
		if _, err := h.ab.AppendBlock(ctx, readSeekNopCloser{bytes.NewReader(buf)}, nil); err != nil {
			// can't log through slog here, we are the sink
			fmt.Fprintf(os.Stderr, "logsink: append failed, dropped %d bytes: %v\n", len(buf), err)
		}
		buf = buf[:0]
	}

	for {
		select {
		case <-h.ctx.Done():
			// drain what Handle already queued, then flush past the cancel
		drain:
			for {
				select {
				case line := <-h.ch:
					buf = append(buf, line...)
				default:
					break drain
				}
			}
			ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), 10*time.Second)
			flush(ctx)
			cancel()
			return
		case line := <-h.ch:
			buf = append(buf, line...)
		case <-ticker.C:
			flush(h.ctx)
		}
	}
}

type readSeekNopCloser struct{ io.ReadSeeker }

func (r readSeekNopCloser) Close() error { return nil }
