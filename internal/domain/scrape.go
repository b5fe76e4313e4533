package domain

// ScrapeStage names the step of a scrape pass that failed.
type ScrapeStage string

const (
	StageNone    ScrapeStage = ""
	StageFetch   ScrapeStage = "fetch"
	StageDecode  ScrapeStage = "decode"
	StageProcess ScrapeStage = "process"
)

// ScrapeStages lists the failure stages in exposition order.
var ScrapeStages = []ScrapeStage{StageFetch, StageDecode, StageProcess}

// StageOf maps a scrape error to the stage it belongs to.
func StageOf(err error) ScrapeStage {
	if err == nil {
		return StageNone
	}
	switch KindOf(err) {
	case KindDecode:
		return StageDecode
	case KindFetch:
		return StageFetch
	default:
		return StageProcess
	}
}
