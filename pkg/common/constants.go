package common

const (
	RedisStreamScanRequest = "screener.scan.request"

	RedisStreamGroup    = "screener-group"
	RedisStreamConsumer = "screener-consumer"

	RedisKeyScanLock = "screener:scan_lock:%s"
)

// Scan types map to worker-pool defaults and universe subsets.
const (
	ScanTypePriority = "priority"
	ScanTypeExtended = "extended"
)
