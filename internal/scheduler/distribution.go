package scheduler

// Tuning defaults for the weighted distribution.
const (
	DefaultShuffleStrength = 0.3
	DefaultSwapRadius      = 3
	DefaultMaxWeight       = 10
	DefaultMaxRun          = 3
)

// DistributionOptions tunes the scheduler. Zero values fall back to defaults;
// a negative MaxRun disables run bounding entirely.
type DistributionOptions struct {
	ShuffleStrength float64
	SwapRadius      int
	MaxWeight       int
	MaxRun          int
}

// DefaultDistributionOptions returns the production tuning.
func DefaultDistributionOptions() DistributionOptions {
	return DistributionOptions{
		ShuffleStrength: DefaultShuffleStrength,
		SwapRadius:      DefaultSwapRadius,
		MaxWeight:       DefaultMaxWeight,
		MaxRun:          DefaultMaxRun,
	}
}

func (o DistributionOptions) normalized() DistributionOptions {
	if o.ShuffleStrength <= 0 || o.ShuffleStrength > 1 {
		o.ShuffleStrength = DefaultShuffleStrength
	}
	if o.SwapRadius <= 0 {
		o.SwapRadius = DefaultSwapRadius
	}
	if o.MaxWeight <= 0 {
		o.MaxWeight = DefaultMaxWeight
	}
	if o.MaxRun == 0 {
		o.MaxRun = DefaultMaxRun
	}
	return o
}

// DistributionStats counts what each phase did during one run.
type DistributionStats struct {
	Tickets        int `json:"tickets"`
	SkippedTickets int `json:"skippedTickets"`
	Leftover       int `json:"leftover"`
	Swaps          int `json:"swaps"`
	RejectedSwaps  int `json:"rejectedSwaps"`
	RunBreaks      int `json:"runBreaks"`
}

// Distributor orders pending topics so subjects appear in proportion to their
// weight without long same-subject runs.
type Distributor struct {
	rng  RandomSource
	opts DistributionOptions
}

// NewDistributor builds a distributor. A nil source is seeded from the clock.
func NewDistributor(rng RandomSource, opts DistributionOptions) *Distributor {
	if rng == nil {
		rng = NewRunSource()
	}
	return &Distributor{rng: rng, opts: opts.normalized()}
}

// CreateBalancedWeightedDistribution orders pending topics with the default tuning.
func CreateBalancedWeightedDistribution(pending []Topic, rng RandomSource) []Topic {
	out, _ := NewDistributor(rng, DefaultDistributionOptions()).Distribute(pending)
	return out
}

type subjectQueue struct {
	name   string
	weight int
	topics []Topic
	next   int
}

// Distribute returns a permutation of pending. Subjects are visited in order
// of first appearance so a fixed seed reproduces the same output.
//
// The phases are: weighted ticket list, ticket shuffle, greedy consumption,
// leftover append and the light local shuffle. When MaxRun is positive a
// final breakRuns pass pulls later topics forward to split any run longer
// than MaxRun, so seeded output differs from the four phases alone. A
// negative MaxRun skips that pass.
//
// Building the ticket list is O(total weight); weights are capped at
// MaxWeight to keep it bounded.
func (d *Distributor) Distribute(pending []Topic) ([]Topic, DistributionStats) {
	var stats DistributionStats
	if len(pending) == 0 {
		return []Topic{}, stats
	}

	queues, order := d.groupBySubject(pending)

	tickets := make([]string, 0, len(order)*d.opts.MaxWeight)
	for _, name := range order {
		q := queues[name]
		for i := 0; i < q.weight; i++ {
			tickets = append(tickets, name)
		}
	}
	stats.Tickets = len(tickets)
	shuffleStrings(d.rng, tickets)

	result := make([]Topic, 0, len(pending))
	for _, name := range tickets {
		q := queues[name]
		if q.next >= len(q.topics) {
			stats.SkippedTickets++
			continue
		}
		result = append(result, q.topics[q.next])
		q.next++
	}

	for _, name := range order {
		q := queues[name]
		for ; q.next < len(q.topics); q.next++ {
			result = append(result, q.topics[q.next])
			stats.Leftover++
		}
	}

	stats.Swaps, stats.RejectedSwaps = d.lightShuffle(result)
	if d.opts.MaxRun > 0 {
		stats.RunBreaks = breakRuns(result, d.opts.MaxRun)
	}
	return result, stats
}

func (d *Distributor) groupBySubject(pending []Topic) (map[string]*subjectQueue, []string) {
	queues := make(map[string]*subjectQueue)
	order := make([]string, 0)
	for _, topic := range pending {
		q, ok := queues[topic.SubjectName]
		if !ok {
			q = &subjectQueue{name: topic.SubjectName, weight: d.clampWeight(topic.SubjectWeight)}
			queues[topic.SubjectName] = q
			order = append(order, topic.SubjectName)
		}
		q.topics = append(q.topics, topic)
	}
	return queues, order
}

func (d *Distributor) clampWeight(w int) int {
	if w < 1 {
		return 1
	}
	if w > d.opts.MaxWeight {
		return d.opts.MaxWeight
	}
	return w
}

// lightShuffle walks right to left and, with probability ShuffleStrength,
// swaps an entry with one of the SwapRadius entries before it. Same-subject
// swaps are skipped, and swaps that would build a run longer than MaxRun are
// undone.
func (d *Distributor) lightShuffle(seq []Topic) (swaps, rejected int) {
	for i := len(seq) - 1; i > 0; i-- {
		if d.rng.Float64() >= d.opts.ShuffleStrength {
			continue
		}
		reach := d.opts.SwapRadius
		if reach > i {
			reach = i
		}
		j := i - 1 - intn(d.rng, reach)
		if seq[i].SubjectName == seq[j].SubjectName {
			continue
		}
		seq[i], seq[j] = seq[j], seq[i]
		if d.opts.MaxRun > 0 && (runLengthAt(seq, i) > d.opts.MaxRun || runLengthAt(seq, j) > d.opts.MaxRun) {
			seq[i], seq[j] = seq[j], seq[i]
			rejected++
			continue
		}
		swaps++
	}
	return swaps, rejected
}

// runLengthAt measures the same-subject run that contains position k.
func runLengthAt(seq []Topic, k int) int {
	subject := seq[k].SubjectName
	length := 1
	for l := k - 1; l >= 0 && seq[l].SubjectName == subject; l-- {
		length++
	}
	for r := k + 1; r < len(seq) && seq[r].SubjectName == subject; r++ {
		length++
	}
	return length
}

// breakRuns pulls the next different-subject topic forward whenever a run
// would exceed maxRun. Order within each subject is preserved. Runs at the
// tail with nothing left to interleave stay as they are.
func breakRuns(seq []Topic, maxRun int) int {
	moves := 0
	run := 0
	for i := range seq {
		if i > 0 && seq[i-1].SubjectName == seq[i].SubjectName {
			run++
		} else {
			run = 1
		}
		if run <= maxRun {
			continue
		}
		subject := seq[i].SubjectName
		k := i + 1
		for k < len(seq) && seq[k].SubjectName == subject {
			k++
		}
		if k == len(seq) {
			break
		}
		moved := seq[k]
		copy(seq[i+1:k+1], seq[i:k])
		seq[i] = moved
		run = 1
		moves++
	}
	return moves
}
