package driven

// PromptStore provides access to prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used by the ask flow.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptPlanningSystem is the system message of the planning phase.
	PromptPlanningSystem = "planning_system"

	// PromptPlanningUser prefixes the planning user message, before the
	// catalog listings and the question.
	PromptPlanningUser = "planning_user"

	// PromptAnsweringSystem is the system message of the answering phase.
	// It carries the RelevantDocumentsPlaceholder.
	PromptAnsweringSystem = "answering_system"

	// PromptAnsweringUser is the user message sent before the question in
	// the answering phase. It may carry the RelevantDocumentsPlaceholder.
	PromptAnsweringUser = "answering_user"
)

// RelevantDocumentsPlaceholder is replaced by the formatted retrieved documents.
const RelevantDocumentsPlaceholder = "${PHASE_2_RELEVANT_DOCUMENTS}"
