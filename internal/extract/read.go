package extract

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

// ReadResult loads a previously written extraction output file. Unknown
// export versions and record kinds are rejected so consumers never operate
// on a document this tool did not produce.
func ReadResult(path string) (*model.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extraction file: %w", err)
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if result.Version != model.ExportVersion {
		return nil, fmt.Errorf("unsupported extraction version %d: expected %d", result.Version, model.ExportVersion)
	}
	for i := range result.Records {
		if err := model.ValidateKind(result.Records[i].Kind); err != nil {
			return nil, fmt.Errorf("record %d: %w", result.Records[i].Number, err)
		}
	}
	return &result, nil
}
