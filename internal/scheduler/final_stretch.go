package scheduler

import "sort"

// subjectPriorityFactor makes the subject weight dominate the combined
// priority; topic priority only orders topics of equally weighted subjects.
const subjectPriorityFactor = 10

// CombinedPriority ranks a topic for the final-stretch cut.
func CombinedPriority(t Topic) int {
	return t.SubjectWeight*subjectPriorityFactor + t.TopicPriority
}

// ExcludedTopic is a pending topic left out by the final-stretch cut.
type ExcludedTopic struct {
	Topic
	CombinedPriority int `json:"combinedPriority"`
}

// PrioritizedSubject summarises what a subject keeps after the cut.
type PrioritizedSubject struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Topics int    `json:"topicCount"`
}

// FinalStretchCut is the outcome of trimming a plan to what fits before the
// exam. Kept stays in input order so curriculum order inside each subject is
// unchanged; Excluded is ordered from highest to lowest priority.
type FinalStretchCut struct {
	Applied        bool                 `json:"applied"`
	AvailableSlots int                  `json:"availableSlots"`
	TopicLimit     int                  `json:"topicLimit"`
	SlotsNeeded    int                  `json:"slotsNeeded"`
	Kept           []Topic              `json:"-"`
	Excluded       []ExcludedTopic      `json:"excluded"`
	Subjects       []PrioritizedSubject `json:"prioritizedSubjects"`
}

// TopicsThatFit returns how many new topics the plan window can carry once
// essay slots are reserved and every topic brings its review slots.
func TopicsThatFit(plan Plan) int {
	available := CalculateTotalAvailableSlots(plan.StartDate, plan.ExamDate, plan.Hours, plan.SessionMinutes)
	free := available - EstimateDemand(nil, plan.Options()).Essays
	if free <= 0 {
		return 0
	}
	return free / (1 + len(ReviewOffsets))
}

// ApplyFinalStretch keeps the pending topics with the highest combined
// priority that still fit the window and reports the rest as excluded. Ties
// keep input order. When everything fits the cut is not applied.
func ApplyFinalStretch(plan Plan, topics []Topic) FinalStretchCut {
	pending := PendingTopics(topics)
	limit := TopicsThatFit(plan)
	cut := FinalStretchCut{
		AvailableSlots: CalculateTotalAvailableSlots(plan.StartDate, plan.ExamDate, plan.Hours, plan.SessionMinutes),
		TopicLimit:     limit,
		Kept:           pending,
		Excluded:       []ExcludedTopic{},
	}

	ranked := make([]int, len(pending))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return CombinedPriority(pending[ranked[a]]) > CombinedPriority(pending[ranked[b]])
	})

	if len(pending) > limit {
		cut.Applied = true
		keep := make([]bool, len(pending))
		for _, idx := range ranked[:limit] {
			keep[idx] = true
		}
		cut.Kept = make([]Topic, 0, limit)
		for i, t := range pending {
			if keep[i] {
				cut.Kept = append(cut.Kept, t)
			}
		}
		for _, idx := range ranked[limit:] {
			t := pending[idx]
			cut.Excluded = append(cut.Excluded, ExcludedTopic{Topic: t, CombinedPriority: CombinedPriority(t)})
		}
		ranked = ranked[:limit]
	}

	cut.SlotsNeeded = CalculateRequiredSlots(cut.Kept, plan.Options())
	cut.Subjects = prioritizedSubjects(pending, ranked)
	return cut
}

func prioritizedSubjects(pending []Topic, ranked []int) []PrioritizedSubject {
	out := make([]PrioritizedSubject, 0)
	index := make(map[string]int)
	for _, idx := range ranked {
		t := pending[idx]
		pos, ok := index[t.SubjectName]
		if !ok {
			index[t.SubjectName] = len(out)
			out = append(out, PrioritizedSubject{Name: t.SubjectName, Weight: t.SubjectWeight, Topics: 1})
			continue
		}
		out[pos].Topics++
	}
	return out
}
