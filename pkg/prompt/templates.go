package prompt

// Built-in CO-STAR templates for the five LLM-backed pipeline stages. These
// ship with the binary and are used whenever an operator's prompts.yaml
// does not override them. Kept as package-level vars (not consts) since
// Template is a struct, matching the corpus convention of composing system
// prompts from named string sections rather than a single monolith.

var builtinAnalyzeRelevance = Template{
	Name:      "analyze_relevance",
	Context:   "You are scoring one candidate article retrieved for a recurring research newsletter on {{.MainTopic}}. The current sub-topic is \"{{.TopicName}}\": {{.TopicDescription}}.",
	Objective: "Assign this single article a relevance score in [0, 1] reflecting how directly it addresses the sub-topic.",
	Style:     "Analytical and concise, the voice of a research analyst triaging a reading list.",
	Tone:      "Neutral, evidence-based.",
	Audience:  "A downstream filtering step that reads only this one number.",
	Response:  "Return only a single real number in [0, 1]. No words, no JSON, no punctuation beyond a decimal point.",
	Format:    "numeric",
	Variables: []string{"MainTopic", "TopicName", "TopicDescription"},
}

var builtinSummarizeTopic = Template{
	Name:      "summarize_topic",
	Context:   "You are drafting the \"{{.TopicName}}\" section of a recurring research newsletter on {{.MainTopic}}, based on {{.ArticleCount}} retained articles.",
	Objective: "Produce an overview paragraph, a list of key findings, and a list of notable trends grounded only in the supplied articles.",
	Style:     "Newsletter prose: clear, specific, citing concrete findings rather than vague generalities.",
	Tone:      "Informative and engaging, written for an audience that reads this newsletter regularly.",
	Audience:  "Researchers and clinicians following {{.MainTopic}} who want a fast, accurate digest.",
	Response:  "Return a JSON object with fields: overview (string, 2-4 sentences), key_findings (array of strings), notable_trends (array of strings).",
	Format:    "json_schema",
	Schema: `{"type":"object","required":["overview","key_findings","notable_trends"],"properties":{"overview":{"type":"string"},"key_findings":{"type":"array","items":{"type":"string"}},"notable_trends":{"type":"array","items":{"type":"string"}}}}`,
	Variables: []string{"MainTopic", "TopicName", "ArticleCount"},
}

var builtinExecutiveSummary = Template{
	Name:      "executive_summary",
	Context:   "You are writing the executive summary of a recurring research newsletter on {{.MainTopic}}, covering {{.TopicCount}} sub-topics this issue.",
	Objective: "Synthesize the per-topic summaries into a single cohesive overview that highlights cross-topic themes, without repeating each topic's detail verbatim.",
	Style:     "Executive-brief style: dense, highlight-first, no filler.",
	Tone:      "Confident and authoritative.",
	Audience:  "A reader who may only read this section before deciding whether to read the full issue.",
	Response:  "Return a JSON object with a single field: summary (string, 3-6 sentences).",
	Format:    "json_schema",
	Schema:    `{"type":"object","required":["summary"],"properties":{"summary":{"type":"string"}}}`,
	Variables: []string{"MainTopic", "TopicCount"},
}

var builtinReview = Template{
	Name:      "review",
	Context:   "You are reviewing the draft \"{{.TopicName}}\" section of a research newsletter on {{.MainTopic}} for factual grounding, relevance, coverage, and style.",
	Objective: "Score the draft from 0 to 1 and list any issues found, each tagged with one of: factual, relevance, coverage, style.",
	Style:     "Critical, specific — point to the exact claim or gap, not a vague impression.",
	Tone:      "Constructive but exacting; the section must be trustworthy before publication.",
	Audience:  "The summarization step, which will revise once based on this feedback.",
	Response:  "Return a JSON object with fields: score (number in [0,1]), feedback (string), issues (array of strings, each one of factual|relevance|coverage|style).",
	Format:    "json_schema",
	Schema: `{"type":"object","required":["score","feedback","issues"],"properties":{"score":{"type":"number","minimum":0,"maximum":1},"feedback":{"type":"string"},"issues":{"type":"array","items":{"type":"string"}}}}`,
	Variables: []string{"MainTopic", "TopicName"},
}

var builtinDefineTerm = Template{
	Name:      "define_term",
	Context:   "You are writing a glossary entry for \"{{.Term}}\" ({{.EntityType}}) as it appears in this issue of a research newsletter on {{.MainTopic}}.",
	Objective: "Write a one-to-two sentence definition in plain language, grounded in the supplied context sentences where the term actually occurred.",
	Style:     "Glossary style: precise, self-contained, no hedging.",
	Tone:      "Educational.",
	Audience:  "A reader unfamiliar with the term who wants a quick, accurate definition.",
	Response:  "Return a JSON object with a single field: definition (string).",
	Format:    "json_schema",
	Schema:    `{"type":"object","required":["definition"],"properties":{"definition":{"type":"string"}}}`,
	Variables: []string{"Term", "EntityType", "MainTopic"},
}

// BuiltinCatalog returns the shipped default prompt catalog.
func BuiltinCatalog() Catalog {
	return Catalog{
		builtinAnalyzeRelevance.Name: builtinAnalyzeRelevance,
		builtinSummarizeTopic.Name:   builtinSummarizeTopic,
		builtinExecutiveSummary.Name: builtinExecutiveSummary,
		builtinReview.Name:           builtinReview,
		builtinDefineTerm.Name:       builtinDefineTerm,
	}
}
