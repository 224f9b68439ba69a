package chrono

import (
	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

// Reason explains why an age could not be computed.
type Reason string

// Reasons reported by EstimateAge.
const (
	ReasonNone               Reason = ""
	ReasonNotExact           Reason = "not_exact"
	ReasonParseFailure       Reason = "parse_failure"
	ReasonConfigurationGap   Reason = "configuration_gap"
	ReasonImpossibleOrdering Reason = "impossible_ordering"
	ReasonNotYetBorn         Reason = "not_yet_born"
)

// AgeEstimate is the detailed result of an age computation.
type AgeEstimate struct {
	Years int
	Known bool
	// Partial is set when a cross-era term had unknown bounds and was
	// counted as zero, so Years may be an undercount.
	Partial bool
	Reason  Reason
}

// CalculateAge returns the age in whole years of someone born at birthDate
// at the moment eventDate, using eras for cross-era arithmetic. It reports
// false when the age cannot be determined.
func CalculateAge(birthDate string, eventDate entities.EventDate, eras []entities.EraConfig) (int, bool) {
	est := EstimateAge(birthDate, eventDate, eras)
	return est.Years, est.Known
}

// EstimateAge is CalculateAge with the reason for an unknown age and the
// partial flag for cross-era totals.
func EstimateAge(birthDate string, eventDate entities.EventDate, eras []entities.EraConfig) AgeEstimate {
	if eventDate.Kind != entities.DateExact || !eventDate.HasYear() {
		return unknownAge(ReasonNotExact)
	}

	birth, birthOK := ParseEraDate(birthDate)
	event, eventOK := eraDateOf(eventDate.CalendarDate)
	if !birthOK || !eventOK {
		return plainAge(birthDate, eventDate.CalendarDate)
	}

	if birth.Era == event.Era {
		return knownAge(elapsedYears(birth, event), false)
	}

	return crossEraAge(birth, event, eras)
}

func eraDateOf(c entities.CalendarDate) (entities.EraDate, bool) {
	era := c.EraLabel()
	if era == "" || !c.HasYear() {
		return entities.EraDate{}, false
	}
	return entities.EraDate{Era: era, Year: *c.Year, Month: c.Month, Day: c.Day}, true
}

func plainAge(birthDate string, event entities.CalendarDate) AgeEstimate {
	birth, ok := ParsePlainDate(birthDate)
	if !ok {
		return unknownAge(ReasonParseFailure)
	}
	b := entities.EraDate{Year: birth.Year, Month: birth.Month, Day: birth.Day}
	e := entities.EraDate{Year: *event.Year, Month: event.Month, Day: event.Day}
	return knownAge(elapsedYears(b, e), false)
}

// elapsedYears counts whole years from birth to event within one calendar.
func elapsedYears(birth, event entities.EraDate) int {
	years := event.Year - birth.Year
	if beforeBirthday(birth, event) {
		years--
	}
	return years
}

// beforeBirthday reports whether event's (month, day) precedes birth's.
func beforeBirthday(birth, event entities.EraDate) bool {
	bm, bd := birth.MonthDay()
	em, ed := event.MonthDay()
	if em != bm {
		return em < bm
	}
	return ed < bd
}

// span is a number of years that may be unknown.
type span struct {
	years int
	known bool
}

func knownSpan(years int) span {
	return span{years: years, known: true}
}

var unknownSpan = span{}

func crossEraAge(birth, event entities.EraDate, eras []entities.EraConfig) AgeEstimate {
	bi := EraIndex(eras, birth.Era)
	ei := EraIndex(eras, event.Era)
	if bi < 0 || ei < 0 {
		return unknownAge(ReasonConfigurationGap)
	}
	if ei < bi {
		return unknownAge(ReasonImpossibleOrdering)
	}

	terms := make([]span, 0, ei-bi+1)
	terms = append(terms, remainderOfEra(eras[bi], birth))
	for _, era := range eras[bi+1 : ei] {
		terms = append(terms, lengthOfEra(era))
	}
	terms = append(terms, elapsedInEra(eras[ei], birth, event))

	total, partial := 0, false
	for _, t := range terms {
		if !t.known {
			partial = true
			continue
		}
		total += t.years
	}
	return knownAge(total, partial)
}

// remainderOfEra is the part of the birth era left after the birth year.
func remainderOfEra(era entities.EraConfig, birth entities.EraDate) span {
	if !era.EndYear.Known {
		return unknownSpan
	}
	return knownSpan(era.EndYear.Value - birth.Year)
}

// lengthOfEra is the full length of an era lying between birth and event.
func lengthOfEra(era entities.EraConfig) span {
	if !era.StartYear.Known || !era.EndYear.Known {
		return unknownSpan
	}
	return knownSpan(era.EndYear.Value - era.StartYear.Value)
}

// elapsedInEra is the part of the event era up to the event. In the era's
// first year the birthday check applies.
func elapsedInEra(era entities.EraConfig, birth, event entities.EraDate) span {
	if !era.StartYear.Known {
		return unknownSpan
	}
	years := event.Year - era.StartYear.Value
	if event.Year == era.StartYear.Value && beforeBirthday(birth, event) {
		years--
	}
	return knownSpan(years)
}

func knownAge(years int, partial bool) AgeEstimate {
	if years < 0 {
		return unknownAge(ReasonNotYetBorn)
	}
	return AgeEstimate{Years: years, Known: true, Partial: partial}
}

func unknownAge(reason Reason) AgeEstimate {
	return AgeEstimate{Reason: reason}
}
