package constants

import "time"

// Discord platform limits
const (
	// MaxDiscordMessageLength is Discord's message character limit
	MaxDiscordMessageLength = 2000
	// MaxEmbedFieldValueLength is the character limit of a single embed field value
	MaxEmbedFieldValueLength = 1024
	// MaxEmbedTitleLength is the character limit of an embed title
	MaxEmbedTitleLength = 256
	// MaxButtonsPerRow is the number of buttons Discord allows in one action row
	MaxButtonsPerRow = 5
	// MaxButtonLabelLength is the character limit of a button label
	MaxButtonLabelLength = 80
)

// Card content budgets
const (
	// MaxScriptPreviewLength caps the script preview shown in a card
	MaxScriptPreviewLength = 400
	// MaxDescriptionLength caps free-text descriptions shown in a card
	MaxDescriptionLength = 300
)

// Timeouts and delays
const (
	// DefaultNavigationTimeout is how long a pager waits for the next click
	DefaultNavigationTimeout = 60 * time.Second
	// DefaultUpstreamTimeout is the HTTP timeout for upstream API calls
	DefaultUpstreamTimeout = 15 * time.Second
	// ReconnectDelay is the delay between gateway connection attempts
	ReconnectDelay = 5 * time.Second
	// BusyNoticeMinDelay is the minimum lifetime of a busy notice
	BusyNoticeMinDelay = 5 * time.Second
	// BusyNoticeMaxDelay is the maximum lifetime of a busy notice
	BusyNoticeMaxDelay = 10 * time.Second
	// ShutdownExpireTimeout bounds the final edit that strips controls on shutdown
	ShutdownExpireTimeout = 3 * time.Second
)

// Upstream defaults
const (
	// DefaultScriptBloxURL is the ScriptBlox API base URL
	DefaultScriptBloxURL = "https://scriptblox.com"
	// DefaultRscriptsURL is the Rscripts API base URL
	DefaultRscriptsURL = "https://rscripts.net"
	// DefaultRateLimit is the default outbound requests per second
	DefaultRateLimit = 5
	// DefaultUserAgent identifies the bot to upstream APIs
	DefaultUserAgent = "scriptbot (+https://github.com/keepmind9/scriptbot)"
)

// Paging defaults
const (
	// DefaultListPageSize is the number of entries on a list page
	DefaultListPageSize = 5
	// MaxListPageSize is the upper bound for list_page_size
	MaxListPageSize = 10
)

// Token masking
const (
	// MinSecretLengthForMasking is the minimum secret length to apply masking
	MinSecretLengthForMasking = 10
	// SecretMaskPrefixLength is the length of prefix to show before masking
	SecretMaskPrefixLength = 4
	// SecretMaskSuffixLength is the length of suffix to show after masking
	SecretMaskSuffixLength = 4
)

// Logging defaults
const (
	// DefaultLogMaxSize is the default maximum log file size in MB
	DefaultLogMaxSize = 100
	// DefaultLogMaxBackups is the default number of rotated files to keep
	DefaultLogMaxBackups = 5
	// DefaultLogMaxAge is the default maximum number of days to retain old logs
	DefaultLogMaxAge = 30
)
