package inference

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ecovision-ai/birdsense/internal/errors"
)

// loadLabels reads the newline-delimited species label asset at path,
// discarding blank lines. The returned list preserves file order.
func loadLabels(path string) ([]string, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path is from application settings
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open species label file: %w", err)).
			Component("inference").
			Category(errors.CategoryLabelLoad).
			Context("label_path", path).
			Build()
	}
	defer func() {
		_ = file.Close()
	}()

	var labels []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(fmt.Errorf("failed to read species label file: %w", err)).
			Component("inference").
			Category(errors.CategoryLabelLoad).
			Context("label_path", path).
			Build()
	}

	if len(labels) == 0 {
		return nil, errors.Newf("species label file contains no labels").
			Component("inference").
			Category(errors.CategoryLabelLoad).
			Context("label_path", path).
			Build()
	}

	return labels, nil
}
