package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// WriteTextfile writes the gathered metrics to path in the text exposition format,
// for pickup by a node exporter textfile collector.
//
// Parameters:
//   - path: Destination file. It is replaced atomically.
//   - gatherer: Source of the metric families.
//
// Returns:
//   - error: Non-nil if gathering or writing fails.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("%w: %w", errWriteTextfileFailed, err)
	}

	logrus.WithField("path", path).Debug("Wrote metrics textfile")

	return nil
}
