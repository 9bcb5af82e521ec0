package email

// Lookup tables for the academy application form. They are never mutated.
var (
	programLabels = map[string]string{
		"basic":    "Basic Hairdressing Course",
		"advanced": "Advanced Hair Styling & Colouring",
		"bridal":   "Bridal & Party Makeup Artistry",
		"skin":     "Professional Skin Care & Facials",
		"nails":    "Nail Art & Extensions",
	}

	educationLabels = map[string]string{
		"10th":         "10th Standard (SSLC)",
		"12th":         "12th Standard (PUC)",
		"diploma":      "Diploma",
		"graduate":     "Graduate",
		"postgraduate": "Post Graduate",
		"other":        "Other",
	}

	batchLabels = map[string]string{
		"morning":   "Morning Batch (9 AM - 12 PM)",
		"afternoon": "Afternoon Batch (1 PM - 4 PM)",
		"evening":   "Evening Batch (5 PM - 8 PM)",
		"weekend":   "Weekend Batch (Sat & Sun)",
	}
)

// ProgramLabel falls back to the raw code when it is not in the table.
func ProgramLabel(code string) string { return label(programLabels, code) }

func EducationLabel(code string) string { return label(educationLabels, code) }

func BatchLabel(code string) string { return label(batchLabels, code) }

func label(table map[string]string, key string) string {
	if l, ok := table[key]; ok {
		return l
	}
	return key
}
