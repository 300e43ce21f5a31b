package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/finlake/financedocflow/internal/models"
	"github.com/finlake/financedocflow/internal/services"
)

var (
	loaderInstance *services.LoaderFunction
	once           sync.Once
	initErr        error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("LoadExtractionResult", loadExtractionResult)
}

// main is required by the Go Functions Framework.
func main() {}

// loadExtractionResult is the Cloud Function entry point for stage 2. It fires
// once per object Document AI writes under the output prefix, result shard or not.
func loadExtractionResult(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		loaderInstance, initErr = services.NewLoader(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return loaderInstance.Process(ctx, gcsEvent)
}
