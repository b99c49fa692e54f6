package identity

import "github.com/danielpatrickdp/agent-identity/go-engine/internal/hashchain"

// #region record-pivotal
// RecordPivotal appends an externally significant event digest with its
// impact magnitude. The pivotal log is append-only until capacity; full
// slots are never overwritten, unlike the declaration ring.
func (r *Record) RecordPivotal(experienceHash hashchain.Hash, impactMagnitude uint64, clock Clock) (PivotalRecorded, error) {
	if int(r.PivotalCount) >= MaxPivotalExperiences {
		return PivotalRecorded{}, ErrPivotalCapacity
	}

	idx := r.PivotalCount
	r.PivotalHashes[idx] = experienceHash
	r.PivotalImpacts[idx] = impactMagnitude
	r.PivotalTimestamps[idx] = clock.UnixTime
	r.PivotalCount++
	r.UpdatedAt = clock.UnixTime

	event := PivotalRecorded{
		Owner:           r.Owner,
		PivotalCount:    r.PivotalCount,
		ExperienceHash:  experienceHash,
		ImpactMagnitude: impactMagnitude,
		Timestamp:       clock.UnixTime,
	}
	return event, nil
}

// #endregion record-pivotal

// #region close
// CloseEvent builds the notification for releasing this record from
// storage. The record itself is simply dropped by its owner.
func (r *Record) CloseEvent(clock Clock) Closed {
	return Closed{
		Owner:            r.Owner,
		DeclarationCount: r.Declarations.Count,
		Timestamp:        clock.UnixTime,
	}
}

// #endregion close
