// Package publish sends finished drafts to the WordPress site. The insert
// helper is a PHP script that reads the post payload as JSON on stdin and
// prints a receipt on stdout. Content assembly (media figure, Sources
// section) happens here, just before the handoff.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/ctxutil"
	"github.com/votewire/autopost/internal/domain"
	"github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/proc"
)

// Inserter sends a finished draft to the publishing platform.
type Inserter interface {
	// Insert publishes the draft with the given post status and returns
	// the backend's receipt. Never called for skip drafts or dry runs.
	Insert(ctx context.Context, draft *domain.Draft, status string) (*domain.Receipt, error)
}

// insertPayload is the JSON document piped to the insert helper. Key facts
// stay internal; the helper receives only what the post needs.
type insertPayload struct {
	Title            string                  `json:"title"`
	Slug             string                  `json:"slug"`
	Excerpt          string                  `json:"excerpt"`
	ContentHTML      string                  `json:"content_html"`
	PostStatus       string                  `json:"post_status"`
	TopicKeywords    []string                `json:"topic_keywords"`
	CandidateProfile domain.CandidateProfile `json:"candidate_profile"`
	SEO              domain.SeoBlock         `json:"seo"`
	Sources          []domain.Source         `json:"sources"`
	CategoryName     string                  `json:"category_name"`
}

// ScriptInserter runs the PHP insert helper.
type ScriptInserter struct {
	config *config.PublishConfig
	proc   proc.Runner
	logger zerolog.Logger
}

// Option configures a ScriptInserter.
type Option func(*ScriptInserter)

// WithLogger sets the logger used for insert invocations.
func WithLogger(logger zerolog.Logger) Option {
	return func(i *ScriptInserter) {
		i.logger = logger
	}
}

// NewScriptInserter creates an inserter backed by the PHP insert helper.
// If runner is nil, a real process executor is used.
func NewScriptInserter(cfg *config.PublishConfig, runner proc.Runner, opts ...Option) *ScriptInserter {
	if runner == nil {
		runner = proc.NewExecRunner()
	}

	i := &ScriptInserter{
		config: cfg,
		proc:   runner,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Insert assembles the content body, pipes the payload to the helper and
// decodes the receipt it prints.
func (i *ScriptInserter) Insert(ctx context.Context, draft *domain.Draft, status string) (*domain.Receipt, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	path := i.scriptPath()
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrScriptMissing, path)
	}

	payload := insertPayload{
		Title:            strings.TrimSpace(draft.Title),
		Slug:             strings.TrimSpace(draft.Slug),
		Excerpt:          strings.TrimSpace(draft.Excerpt),
		ContentHTML:      BuildContent(draft),
		PostStatus:       status,
		TopicKeywords:    draft.TopicKeywords,
		CandidateProfile: draft.CandidateProfile,
		SEO:              draft.SEO,
		Sources:          draft.Sources,
		CategoryName:     i.config.CategoryName,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode insert payload")
	}

	command := proc.Command{
		Name:    i.config.PHPBinary,
		Args:    []string{path},
		Stdin:   string(body),
		Timeout: i.config.Timeout,
	}

	i.logger.Info().
		Str("script", path).
		Str("post_status", status).
		Str("slug", payload.Slug).
		Msg("inserting post")

	output, err := i.proc.Run(ctx, command)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrInsertFailed, i.config.InsertScript, err)
	}

	receipt, err := decodeReceipt(output.Stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrInsertFailed, i.config.InsertScript, err)
	}

	i.logger.Info().
		Int64("post_id", receipt.PostID).
		Str("url", receipt.URL).
		Msg("post inserted")

	return receipt, nil
}

// Preflight verifies the insert helper exists on disk. The pipeline probes
// this before taking the run lock; dry runs skip it.
func (i *ScriptInserter) Preflight(_ context.Context) error {
	path := i.scriptPath()
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrScriptMissing, path)
	}
	return nil
}

// scriptPath joins the configured directory with the helper name. Absolute
// helper names are used as-is.
func (i *ScriptInserter) scriptPath() string {
	script := i.config.InsertScript
	if filepath.IsAbs(script) || i.config.Dir == "" {
		return script
	}
	return filepath.Join(i.config.Dir, script)
}

// decodeReceipt parses the helper's stdout, keeping the raw response for
// the run report.
func decodeReceipt(data []byte) (*domain.Receipt, error) {
	var receipt domain.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, errors.Wrap(err, "insert helper returned unexpected data")
	}
	receipt.Raw = strings.TrimSpace(string(data))
	return &receipt, nil
}

// Ensure ScriptInserter implements Inserter.
var _ Inserter = (*ScriptInserter)(nil)
