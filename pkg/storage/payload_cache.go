package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/klauspost/compress/zstd"
)

// SavePayload stores the raw board payload compressed with zstd.
func (r *ReportRepository) SavePayload(raw []byte) (string, error) {
	path, err := r.ResolvePath(PayloadFile)
	if err != nil {
		return "", err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()

	if err := os.WriteFile(path, enc.EncodeAll(raw, nil), 0644); err != nil {
		return "", fmt.Errorf("failed to write payload cache: %w", err)
	}
	return path, nil
}

// LoadPayload reads the cached payload of the output directory.
func (r *ReportRepository) LoadPayload() ([]byte, error) {
	path, err := r.ResolvePath(PayloadFile)
	if err != nil {
		return nil, err
	}
	return LoadPayloadFile(path)
}

// LoadPayloadFile reads a board payload from path. Files ending in .zst are
// zstd-compressed; anything else is read as plain JSON.
func LoadPayloadFile(path string) ([]byte, error) {
	retryer := retry.New[[]byte](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  10 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
	})

	return retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is supplied by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload %s: %w", path, err)
		}
		if !strings.HasSuffix(path, ".zst") {
			return data, nil
		}

		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()

		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress payload %s: %w", path, err)
		}
		return out, nil
	})
}
