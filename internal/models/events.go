package models

// GCSEvent is the payload of a GCS object-finalize CloudEvent. Both pipeline
// stages are triggered by one of these: the dispatcher by uploads to the input
// bucket, the loader by Document AI writing result shards to the output bucket.
type GCSEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}
