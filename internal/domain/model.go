package domain

type Status int

const (
	StatusGreen Status = iota
	StatusRed
)

func (s Status) String() string {
	switch s {
	case StatusGreen:
		return "green"
	case StatusRed:
		return "red"
	default:
		return "unknown"
	}
}

// TimeInfo is only filled by backends that expose it. CompletedAt keeps the
// backend's own timestamp format.
type TimeInfo struct {
	CompletedAt  string
	DurationSecs uint64
}

type BuildStatus struct {
	Status   Status
	URL      string
	TimeInfo *TimeInfo
}

// Result pairs a target with the outcome of one fetch. Exactly one of
// Status or Err is meaningful.
type Result struct {
	Target Target
	Status BuildStatus
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// Summary counts one poll cycle.
type Summary struct {
	Green     int
	Red       int
	Failed    int
	RedTitles []string
	Failures  []string
	Retrieved int64
}

func Summarize(results []Result, retrieved int64) Summary {
	s := Summary{Retrieved: retrieved}
	for _, r := range results {
		switch {
		case !r.OK():
			s.Failed++
			s.Failures = append(s.Failures, r.Target.Title()+": "+r.Err.Error())
		case r.Status.Status == StatusGreen:
			s.Green++
		default:
			s.Red++
			s.RedTitles = append(s.RedTitles, r.Target.Title())
		}
	}
	return s
}
