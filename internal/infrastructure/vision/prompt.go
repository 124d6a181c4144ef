package vision

func buildExtractionPrompt(textHint string) string {
	prompt := `You are a medical document reader.
Look at the attached document image and return a strict JSON object with keys:
documentType (one of: lab_report, prescription, imaging, discharge_summary, consultation, vaccination, other),
title (string), date (YYYY-MM-DD), provider (string), facility (string),
patientInfo (object: name, dateOfBirth, gender),
labResults (array of objects: testName, value, unit, referenceRange {low, high, text}, status one of normal/low/high/critical/unknown, category one of metabolic/lipid/cbc/thyroid/liver/kidney/cardiac/inflammatory/vitamin/hormone/other),
medications (array of objects: name, dosage, frequency, instructions),
diagnoses (array of strings), recommendations (array of strings),
rawText (full transcribed text).
No markdown, no extra keys. Use null for anything you cannot read.`

	if textHint == "" {
		return prompt
	}

	const maxHint = 4000
	hint := textHint
	if len(hint) > maxHint {
		hint = hint[:maxHint]
	}
	return prompt + `

Embedded text recovered from the file (may be partial):
` + hint
}
