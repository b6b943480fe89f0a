package notifications

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// LocalLog is a logrus logger that does not send entries as notifications.
// It's used for internal logging to avoid notification loops.
var LocalLog = logrus.WithField("notify", "no")

// messageBufferSize sets the capacity of the outgoing message queue.
const messageBufferSize = 16

// forwardedFields are the invocation fields appended to a notification, in order.
var forwardedFields = []string{"point", "command", "container", "status", "exit_code", "error"}

// router defines the interface for sending Shoutrrr notifications.
type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLevel sets the least severe level that is forwarded. Defaults to warn.
func WithLevel(level logrus.Level) Option {
	return func(n *Notifier) {
		n.level = level
	}
}

// WithTitle sets the title passed to services that support one.
func WithTitle(title string) Option {
	return func(n *Notifier) {
		if title != "" {
			n.params.SetTitle(title)
		}
	}
}

// WithLogger sets the logger handed to Shoutrrr services. By default Shoutrrr
// output goes to the logrus trace level.
func WithLogger(logger shoutrrrTypes.StdLogger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// Notifier forwards failed command invocations to Shoutrrr services.
//
// It is a logrus hook: entries at or above its level that carry a hook point
// are turned into messages and sent from a background goroutine.
type Notifier struct {
	urls     []string
	router   router
	logger   shoutrrrTypes.StdLogger
	level    logrus.Level
	params   *shoutrrrTypes.Params
	messages chan string
	done     chan struct{}

	mu        sync.Mutex
	closed    bool
	receiving bool
}

// New creates a Notifier sending to urls.
//
// Parameters:
//   - urls: Shoutrrr service URLs (e.g. "slack://token@channel").
//   - opts: Optional settings.
//
// Returns:
//   - *Notifier: Running notifier; call Close to flush it.
//   - error: Non-nil if a URL cannot be parsed.
func New(urls []string, opts ...Option) (*Notifier, error) {
	n := &Notifier{
		urls:     urls,
		level:    logrus.WarnLevel,
		params:   &shoutrrrTypes.Params{},
		messages: make(chan string, messageBufferSize),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.logger == nil {
		n.logger = log.New(logrus.StandardLogger().WriterLevel(logrus.TraceLevel), "Shoutrrr: ", 0)
	}

	sender, err := shoutrrr.NewSender(n.logger, urls...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateSenderFailed, err)
	}

	n.router = sender

	go n.sendNotifications()

	return n, nil
}

// GetScheme extracts the scheme part of a Shoutrrr URL.
// It returns "invalid" if no scheme is found.
func GetScheme(url string) string {
	schemeEnd := strings.Index(url, ":")
	if schemeEnd <= 0 {
		return "invalid"
	}

	return url[:schemeEnd]
}

// GetNames returns the service names of the configured URLs.
func (n *Notifier) GetNames() []string {
	names := make([]string, len(n.urls))
	for i, u := range n.urls {
		names[i] = GetScheme(u)
	}

	return names
}

// AddLogHook registers the notifier with the standard logger.
func (n *Notifier) AddLogHook() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.receiving {
		return
	}

	n.receiving = true
	logrus.AddHook(n)
}

// Levels returns the log levels that trigger notifications.
func (n *Notifier) Levels() []logrus.Level {
	return logrus.AllLevels[:n.level+1]
}

// Fire queues a notification for entries describing a command invocation.
func (n *Notifier) Fire(entry *logrus.Entry) error {
	if entry.Data["notify"] == "no" {
		return nil
	}

	if _, ok := entry.Data["point"]; !ok {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	n.messages <- buildMessage(entry)

	return nil
}

// Close stops accepting entries and waits until queued messages are sent.
func (n *Notifier) Close() {
	n.mu.Lock()

	if n.closed {
		n.mu.Unlock()

		return
	}

	n.closed = true
	close(n.messages)
	n.mu.Unlock()

	<-n.done
}

// sendNotifications sends queued messages until the queue is closed.
func (n *Notifier) sendNotifications() {
	defer close(n.done)

	for msg := range n.messages {
		errs := n.router.Send(msg, n.params)

		for i, err := range errs {
			if err == nil {
				continue
			}

			scheme := "unknown"
			if i < len(n.urls) {
				scheme = GetScheme(n.urls[i])
			}

			LocalLog.WithFields(logrus.Fields{
				"service": scheme,
				"index":   i,
			}).WithError(err).Error("Failed to send shoutrrr notification")
		}
	}
}

// buildMessage renders an entry as a single line, e.g.
// "Command invocation failed (point=label status=timed_out)".
func buildMessage(entry *logrus.Entry) string {
	fields := make([]string, 0, len(forwardedFields))

	for _, key := range forwardedFields {
		if value, ok := entry.Data[key]; ok {
			fields = append(fields, fmt.Sprintf("%s=%v", key, value))
		}
	}

	if len(fields) == 0 {
		return entry.Message
	}

	return fmt.Sprintf("%s (%s)", entry.Message, strings.Join(fields, " "))
}
