package bot

// ConversationState tracks a user's progress through a multi-step
// command. Step -1 marks a finished conversation ready for cleanup.
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]interface{}
}

func newConversationState(command string) *ConversationState {
	return &ConversationState{
		Command: command,
		Step:    1,
		Data:    make(map[string]interface{}),
	}
}
