package cvformat

import "strings"

const promptRules = `You are a CV formatter.
You will receive unstructured CV data extracted from two documents: the candidate's resume and their EHS application form.
Merge them and transform the data according to the following rules:

Typography & Structure
- Font: Palatino Linotype throughout
- Photo sizing: 4.7cm, landscape photos are converted to portrait
- Date format: first 3 letters of the month only (e.g. Jan 2020)
- Job titles: always start with a capital letter

Content Organization
1. Header: Name, Job Title, Professional Photo
2. Personal Details: Nationality, Languages, DOB, Marital Status
3. Profile: Professional summary
4. Experience: Reverse chronological, bullet points
5. Education: Consistent formatting
6. Key Skills: Bullet points
7. Interests: Bullet points

Content Cleanup Rules
- Replace "I am responsible for" with "Responsible for"
- Replace "Principle" with "Principal" and "Discrete" with "Discreet"
- Remove fields: Age, Dependants
- Convert paragraphs to bullet points
- Ensure a professional tone

OUTPUT FORMAT:
Return a JSON object with exactly these keys:
{
  "header": { "name": "", "jobTitle": "", "photoUrl": "" },
  "personalDetails": { "nationality": "", "languages": "", "dob": "", "maritalStatus": "" },
  "profile": "",
  "experience": [{ "jobTitle": "", "company": "", "location": "", "dates": "", "responsibilities": [""] }],
  "education": [{ "institution": "", "degree": "", "location": "", "dates": "" }],
  "keySkills": [""],
  "interests": [""]
}
`

const promptTail = "IMPORTANT: Return ONLY valid JSON without any Markdown formatting or code blocks. Do not include ```json or ``` in your response.\n"

// BuildPrompt is deterministic for a given pair of inputs.
func BuildPrompt(resumeText, ehsFormText string) string {
	var sb strings.Builder
	sb.WriteString(promptRules)
	sb.WriteString("\nRESUME DATA:\n")
	sb.WriteString(resumeText)
	sb.WriteString("\n\nEHS FORM DATA:\n")
	sb.WriteString(ehsFormText)
	sb.WriteString("\n\n")
	sb.WriteString(promptTail)
	return sb.String()
}
