package utils

// ProgressCallback reports how many of total items are finished.
type ProgressCallback func(done, total int)
