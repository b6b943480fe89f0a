package notifications

import "errors"

// errCreateSenderFailed indicates the Shoutrrr sender could not be created from the configured URLs.
var errCreateSenderFailed = errors.New("failed to create notification sender")
