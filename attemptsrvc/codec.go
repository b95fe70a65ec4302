package attemptsrvc

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/questlab/backend/evalsrvc"
)

// Evaluation results carry full captured output; they are stored as
// zstd-compressed JSON to stay well under item size limits.

func encodeResult(res evalsrvc.EvaluationResult) ([]byte, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation result: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decodeResult(blob []byte) (*evalsrvc.EvaluationResult, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()
	data, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress evaluation result: %w", err)
	}
	var res evalsrvc.EvaluationResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation result: %w", err)
	}
	return &res, nil
}
