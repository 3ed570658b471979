package constants

// DocStage is the canonical per-document stage in a screening run.
type DocStage string

// Stable values (these exact strings appear in logs and history rows).
const (
	StageDiscovered DocStage = "DISCOVERED"
	StageExtracting DocStage = "EXTRACTING"
	StageExtracted  DocStage = "EXTRACTED"
	StageScoring    DocStage = "SCORING"
	StageScored     DocStage = "SCORED"
	StageExcluded   DocStage = "EXCLUDED" // terminal: absent from the ranking
)
