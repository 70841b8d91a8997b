package exposition

type Kind string

const (
	KindCounter   Kind = "counter"
	KindGauge     Kind = "gauge"
	KindHistogram Kind = "histogram"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCounter, KindGauge, KindHistogram:
		return true
	}
	return false
}

// Metadata is what the text formatter needs to describe one metric family.
type Metadata struct {
	Name string
	// Help is written after "# HELP <name> " with backslashes and newlines
	// escaped as \\ and \n.
	Help string
	Kind Kind
}
