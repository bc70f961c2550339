package student

import (
	"math"

	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/document"
)

// Progress weighting: each phase owns a 10-point band starting at 10×index.
// Within a band, a track sits at the midpoint until its milestone is met, then
// at the top. Document collection is the exception: its band fills in
// proportion to the required documents on file.
const (
	phaseBandWidth    = 10
	midBandBonus      = 5
	milestoneMetBonus = 10
	maxProgress       = 100
)

// ComputeProgress derives a display-only 0-100 progress percentage for one
// country track. It is a pure function of the supplied snapshots: safe to call
// repeatedly and concurrently, never errors. An absent or unrecognized phase
// yields 0 so dirty data renders as "not started" instead of breaking the UI.
func ComputeProgress(profile StudentCountryProfile, docs []document.Document, apps []application.Application) int {
	idx := profile.CurrentPhase.Index()
	if idx < 0 {
		return 0
	}

	base := idx * phaseBandWidth
	country := profile.Country

	var progress float64
	switch profile.CurrentPhase {
	case PhaseDocumentCollection:
		required := RequiredDocuments(PhaseUniversityShortlisting)
		satisfied := countSatisfiedTypes(docs, required)
		progress = float64(satisfied) / float64(len(required)) * phaseBandWidth

	case PhaseUniversityShortlisting:
		progress = float64(base + bandBonus(hasApplicationForCountry(apps, country)))

	case PhaseApplicationSubmission:
		progress = float64(base + bandBonus(hasApplicationWithStatus(apps, country, application.StatusSubmitted)))

	case PhaseOfferReceived:
		progress = float64(base + bandBonus(hasApplicationWithStatus(apps, country, application.StatusAccepted)))

	default:
		// INITIAL_PAYMENT through ENROLLMENT: no finer milestone tracked,
		// a track in the phase sits at mid-band.
		progress = float64(base + midBandBonus)
	}

	if progress > maxProgress {
		progress = maxProgress
	}
	if progress < 0 {
		progress = 0
	}
	return int(math.Round(progress))
}

func bandBonus(milestoneMet bool) int {
	if milestoneMet {
		return milestoneMetBonus
	}
	return midBandBonus
}

// countSatisfiedTypes counts unique required types present with a pending or
// approved document.
func countSatisfiedTypes(docs []document.Document, required []document.Type) int {
	present := make(map[document.Type]bool, len(docs))
	for _, doc := range docs {
		if doc.CountsTowardRequirement() {
			present[doc.Type] = true
		}
	}
	var n int
	for _, t := range required {
		if present[t] {
			n++
		}
	}
	return n
}

func hasApplicationForCountry(apps []application.Application, country string) bool {
	for _, app := range apps {
		if SameCountry(app.UniversityCountry, country) {
			return true
		}
	}
	return false
}

func hasApplicationWithStatus(apps []application.Application, country string, status application.Status) bool {
	for _, app := range apps {
		if app.Status == status && SameCountry(app.UniversityCountry, country) {
			return true
		}
	}
	return false
}
