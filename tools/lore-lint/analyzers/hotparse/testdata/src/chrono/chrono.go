package chrono

type EraConfig struct{ Name string }

type EventDate struct{ Year int }

func ParseEraConfig(raw string) []EraConfig { return nil }

func EraNames(eras []EraConfig) []string { return nil }

func ParseEventDate(raw string) EventDate { return EventDate{} }

func Compare(a, b EventDate, eraOrder []string) int { return a.Year - b.Year }
