package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileNameFromResultObject(t *testing.T) {
	tests := []struct {
		name       string
		objectName string
		want       string
		wantOK     bool
	}{
		{"simple shard", "invoice.pdf_results/0/shard-0.json", "invoice.pdf", true},
		{"nested input path", "2026/q3/scan.png_results/0/shard-0.json", "2026/q3/scan.png", true},
		{"no result marker", "random/output.json", "", false},
		{"marker only", "_results/shard.json", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FileNameFromResultObject(tt.objectName)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
