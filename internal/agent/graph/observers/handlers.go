package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// ModelRecorder counts chat model invocations by status.
type ModelRecorder interface {
	ModelCall(status string)
}

// NewAllCallbacks aggregates the model and prompt observers into one callbacks.Handler.
// recorder may be nil.
func NewAllCallbacks(recorder ModelRecorder) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler(recorder)).
		Prompt(newPromptHandler()).
		Handler()
}
