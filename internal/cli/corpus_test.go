package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/votewire/autopost/internal/errors"
)

// stubCorpusStore returns canned listings for display tests.
type stubCorpusStore struct {
	titles     []string
	candidates []string
	err        error
}

func (s *stubCorpusStore) Titles(_ context.Context) ([]string, error) {
	return s.titles, s.err
}

func (s *stubCorpusStore) Candidates(_ context.Context) ([]string, error) {
	return s.candidates, s.err
}

func TestAddCorpusCommand(t *testing.T) {
	t.Parallel()

	rootCmd := newRootCmd(&GlobalFlags{}, BuildInfo{})

	corpusCmd, _, err := rootCmd.Find([]string{"corpus"})
	require.NoError(t, err)
	assert.Equal(t, "corpus", corpusCmd.Name())

	titlesCmd, _, err := rootCmd.Find([]string{"corpus", "titles"})
	require.NoError(t, err)
	assert.Equal(t, "titles", titlesCmd.Name())

	candidatesCmd, _, err := rootCmd.Find([]string{"corpus", "candidates"})
	require.NoError(t, err)
	assert.Equal(t, "candidates", candidatesCmd.Name())
}

func TestFetchCorpusEntries(t *testing.T) {
	t.Parallel()

	store := &stubCorpusStore{
		titles:     []string{"Asha Gurung: Engineer Running in Kathmandu-4"},
		candidates: []string{"Bikram Thapa", "Sita Rai"},
	}

	titles, err := fetchCorpusEntries(context.Background(), store, "titles")
	require.NoError(t, err)
	assert.Equal(t, store.titles, titles)

	candidates, err := fetchCorpusEntries(context.Background(), store, "candidates")
	require.NoError(t, err)
	assert.Equal(t, store.candidates, candidates)
}

func TestFetchCorpusEntries_StoreError(t *testing.T) {
	t.Parallel()

	store := &stubCorpusStore{err: apperrors.ErrCorpusUnavailable}

	_, err := fetchCorpusEntries(context.Background(), store, "titles")
	require.ErrorIs(t, err, apperrors.ErrCorpusUnavailable)
}

func TestDisplayCorpusEntries(t *testing.T) {
	t.Parallel()

	out := &recordingOutput{}
	displayCorpusEntries(out, "titles", []string{
		"Asha Gurung: Engineer Running in Kathmandu-4",
		"Bikram Thapa and the Fight for Pokhara",
	})

	infos := out.allInfos()
	assert.Contains(t, infos, "Asha Gurung: Engineer Running in Kathmandu-4")
	assert.Contains(t, infos, "Bikram Thapa and the Fight for Pokhara")
	assert.Contains(t, infos, "2 titles")
}

func TestDisplayCorpusEntries_Empty(t *testing.T) {
	t.Parallel()

	out := &recordingOutput{}
	displayCorpusEntries(out, "candidates", nil)

	assert.Contains(t, out.allInfos(), "No candidates found.")
}

func TestRunCorpusList_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := &cobra.Command{Use: "titles"}
	cmd.Flags().String("output", OutputText, "")

	var buf bytes.Buffer
	err := runCorpusList(ctx, cmd, &buf, "titles")
	require.ErrorIs(t, err, context.Canceled)
}
