package validation

import (
	"fmt"
	"strings"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// MinConsensusSize is the minimum number of memories required to form a
// consensus group. Ported directly from contradiction/consensus.rs's
// MIN_CONSENSUS_SIZE.
const MinConsensusSize = 3

// ConsensusBoost is the confidence boost applied to each memory in a
// consensus group. Ported directly from consensus.rs's CONSENSUS_BOOST.
const ConsensusBoost = 0.2

// ConsensusGroup is a set of memories that independently support the
// same conclusion.
type ConsensusGroup struct {
	MemoryIDs []string
	Topic     string
	Boost     float64
}

// DetectConsensus groups memories by (kind, sorted tags) and reports any
// group whose size is at least MinConsensusSize. Ported directly from
// consensus.rs's detect_consensus, generalized from the Rust memory_type
// field to this package's Kind.
func DetectConsensus(memories []*coretypes.Memory) []ConsensusGroup {
	groups := make(map[string][]*coretypes.Memory)

	for _, m := range memories {
		if m.Archived {
			continue
		}
		key := fmt.Sprintf("%s:%s", m.Kind, strings.Join(m.Tags.Slice(), ","))
		groups[key] = append(groups[key], m)
	}

	var out []ConsensusGroup
	for key, members := range groups {
		if len(members) < MinConsensusSize {
			continue
		}
		topic := key
		if tags := members[0].Tags.Slice(); len(tags) > 0 {
			topic = tags[0]
		}
		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = m.ID
		}
		out = append(out, ConsensusGroup{MemoryIDs: ids, Topic: topic, Boost: ConsensusBoost})
	}

	return out
}

// IsInConsensus reports whether memoryID belongs to any consensus group.
func IsInConsensus(memoryID string, groups []ConsensusGroup) bool {
	for _, g := range groups {
		for _, id := range g.MemoryIDs {
			if id == memoryID {
				return true
			}
		}
	}
	return false
}

// ResistsContradiction reports whether memoryID's consensus support
// should weaken or suppress a detected contradiction against it.
func ResistsContradiction(memoryID string, groups []ConsensusGroup) bool {
	return IsInConsensus(memoryID, groups)
}
