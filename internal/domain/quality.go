package domain

// DataQuality describes how complete an environmental reading is.
type DataQuality struct {
	Completeness      float64  `json:"completeness"`
	MissingParameters []string `json:"missing_parameters"`
	DataAge           string   `json:"data_age"`
	Reliability       string   `json:"reliability"`
}

// AssessDataQuality reports completeness over the eight expected parameters
// and a coarse reliability grade.
func AssessDataQuality(current *Reading) DataQuality {
	params := current.parameters()

	present := 0
	missing := []string{}
	for _, p := range params {
		if p.Present {
			present++
		} else {
			missing = append(missing, p.Name)
		}
	}

	reliability := "low"
	switch {
	case present > 6:
		reliability = "high"
	case present > 4:
		reliability = "medium"
	}

	return DataQuality{
		Completeness:      float64(present) / float64(len(params)) * 100,
		MissingParameters: missing,
		DataAge:           "real-time",
		Reliability:       reliability,
	}
}

// SeverityConsistencyBonus scores agreement between a reporter's claimed
// severity and the text-predicted one: exact match 20, adjacent tiers 10,
// two tiers apart 0, further -10. Feeds the overall report confidence.
func SeverityConsistencyBonus(reported, predicted Severity) float64 {
	diff := reported.Rank() - predicted.Rank()
	if diff < 0 {
		diff = -diff
	}

	switch diff {
	case 0:
		return 20
	case 1:
		return 10
	case 2:
		return 0
	default:
		return -10
	}
}
