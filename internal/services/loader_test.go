package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/finlake/financedocflow/internal/models"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoaderIgnoresNonResultArtifacts(t *testing.T) {
	// No clients configured: the filter must short-circuit before any
	// download or insert is attempted. Manifests and directory markers from
	// the batch job's sharding land here constantly.
	f := &LoaderFunction{}

	for _, name := range []string{
		"invoice.pdf_results/",
		"invoice.pdf_results/0/manifest.txt",
		"invoice.pdf_results/0/output.tmp",
	} {
		err := f.Process(context.Background(), models.GCSEvent{
			Bucket: "finance-docs-output",
			Name:   name,
		})
		assert.NoError(t, err, "object %s must be a silent no-op", name)
	}
}

func TestMarkJobObservedWithoutRegistry(t *testing.T) {
	f := &LoaderFunction{}
	// Registry disabled: must be a no-op, not a panic.
	f.markJobObserved(context.Background(), testLogger(), "invoice.pdf_results/0/shard-0.json")
}
