package config

// LLMProviderType enumerates the LLM backends the gateway can fall back
// across, in priority order (§4.5).
type LLMProviderType string

const (
	LLMProviderAnthropic  LLMProviderType = "anthropic"
	LLMProviderLangChain  LLMProviderType = "langchain"
	LLMProviderBedrock    LLMProviderType = "bedrock"
)

// IsValid reports whether t is a recognized provider type.
func (t LLMProviderType) IsValid() bool {
	switch t {
	case LLMProviderAnthropic, LLMProviderLangChain, LLMProviderBedrock:
		return true
	default:
		return false
	}
}

// RetrieverType enumerates the search connector kinds a topic can be routed
// through (§4.6).
type RetrieverType string

const (
	RetrieverPubMed    RetrieverType = "pubmed"
	RetrieverFeed      RetrieverType = "feed"
	RetrieverWebSearch RetrieverType = "web_search"
)

// IsValid reports whether t is a recognized retriever type.
func (t RetrieverType) IsValid() bool {
	switch t {
	case RetrieverPubMed, RetrieverFeed, RetrieverWebSearch:
		return true
	default:
		return false
	}
}
