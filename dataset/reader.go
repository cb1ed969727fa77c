package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gasparian/curve-ann-go/common"
	"go.uber.org/zap"
)

var (
	// ErrMalformedLine returned by the strict reader when a coordinate can't be parsed
	ErrMalformedLine = errors.New("malformed dataset line")
	// ErrRaggedDataset returned when rows have different number of coordinates
	ErrRaggedDataset = errors.New("rows of different dimensions")
)

// ReaderConfig controls parsing of whitespace separated files
type ReaderConfig struct {
	// Lenient drops malformed tokens (and logs them) instead of failing
	Lenient bool
	// AllowRagged permits rows of different lengths (time series of different sizes)
	AllowRagged bool
	Logger      *zap.SugaredLogger
}

// ReadItemsFile opens file and reads the dataset from it
func ReadItemsFile(path string, cfg ReaderConfig) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := ReadItems(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ReadItems parses lines of the form "<id> <x1> <x2> ... <xd>"; blank lines are skipped
func ReadItems(r io.Reader, cfg ReaderConfig) ([]Item, error) {
	logger := common.LoggerOrNop(cfg.Logger)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	items := make([]Item, 0)
	dim := -1
	lineNum := 0
	dropped := 0
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		item := Item{
			ID:     tokens[0],
			Coords: make([]float64, 0, len(tokens)-1),
		}
		for _, tok := range tokens[1:] {
			val, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				if !cfg.Lenient {
					return nil, fmt.Errorf("line %d: token %q: %w", lineNum, tok, ErrMalformedLine)
				}
				logger.Warnf("line %d: dropping token %q", lineNum, tok)
				dropped++
				continue
			}
			item.Coords = append(item.Coords, val)
		}
		if len(item.Coords) == 0 {
			if !cfg.Lenient {
				return nil, fmt.Errorf("line %d: no coordinates: %w", lineNum, ErrMalformedLine)
			}
			logger.Warnf("line %d: skipping row %q without coordinates", lineNum, item.ID)
			continue
		}
		if dim < 0 {
			dim = len(item.Coords)
		} else if dim != len(item.Coords) && !cfg.AllowRagged {
			if !cfg.Lenient {
				return nil, fmt.Errorf("line %d: expected %d coordinates, got %d: %w", lineNum, dim, len(item.Coords), ErrRaggedDataset)
			}
			logger.Warnf("line %d: skipping row %q of dimension %d", lineNum, item.ID, len(item.Coords))
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if dropped > 0 {
		logger.Infof("dropped %d malformed tokens", dropped)
	}
	return items, nil
}
