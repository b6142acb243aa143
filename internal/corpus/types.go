package corpus

// Topic is a category label from the fixed topic set.
type Topic string

// The canonical topic set. Records referencing a topic outside this set
// are rejected at load time.
const (
	TopicVirtualDOM       Topic = "virtual-dom"
	TopicHooks            Topic = "hooks"
	TopicStateManagement  Topic = "state-management"
	TopicReconciliation   Topic = "reconciliation"
	TopicForms            Topic = "forms"
	TopicPortals          Topic = "portals"
	TopicCodeSplitting    Topic = "code-splitting"
	TopicServerComponents Topic = "server-components"
	TopicTesting          Topic = "testing"
	TopicI18n             Topic = "i18n"
	TopicAccessibility    Topic = "accessibility"
)

var topicOrder = []Topic{
	TopicVirtualDOM,
	TopicHooks,
	TopicStateManagement,
	TopicReconciliation,
	TopicForms,
	TopicPortals,
	TopicCodeSplitting,
	TopicServerComponents,
	TopicTesting,
	TopicI18n,
	TopicAccessibility,
}

// Topics returns the canonical topic set in its fixed order.
func Topics() []Topic {
	out := make([]Topic, len(topicOrder))
	copy(out, topicOrder)
	return out
}

// ParseTopic validates a topic string against the canonical set.
func ParseTopic(s string) (Topic, bool) {
	for _, t := range topicOrder {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// FollowUp is a follow-up question attached to a record.
type FollowUp struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// QARecord is one interview question with its answer and metadata.
// Records are authored once and immutable after load.
type QARecord struct {
	ID         string     `yaml:"id" json:"id"`
	Topic      Topic      `yaml:"topic" json:"topic"`
	Difficulty string     `yaml:"difficulty" json:"difficulty,omitempty"`
	Question   string     `yaml:"question" json:"question"`
	Answer     string     `yaml:"answer" json:"answer"`
	FollowUps  []FollowUp `yaml:"follow_ups" json:"followUps,omitempty"`
	CodeSample string     `yaml:"code_sample" json:"codeSample,omitempty"`
}

// StudyPlanPhase is one phase of the study plan.
type StudyPlanPhase struct {
	Name          string  `yaml:"name" json:"name"`
	DurationWeeks int     `yaml:"duration_weeks" json:"durationWeeks"`
	Topics        []Topic `yaml:"topics" json:"topics"`
}

// StudyPlan holds the ordered phases of the study plan.
type StudyPlan struct {
	Phases []StudyPlanPhase `yaml:"phases" json:"phases"`
}

// TotalWeeks returns the sum of all phase durations.
func (p StudyPlan) TotalWeeks() int {
	total := 0
	for _, ph := range p.Phases {
		total += ph.DurationWeeks
	}
	return total
}

// PhaseAt returns the phase covering the given 1-based week number.
func (p StudyPlan) PhaseAt(week int) (StudyPlanPhase, bool) {
	if week < 1 {
		return StudyPlanPhase{}, false
	}
	for _, ph := range p.Phases {
		if week <= ph.DurationWeeks {
			return ph, true
		}
		week -= ph.DurationWeeks
	}
	return StudyPlanPhase{}, false
}
