package operations

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/proxystack/wasmbench/internal/ui/models/spinner"
)

type OperationFunc func() (interface{}, error)

type DisplayFunc func(result interface{})

// WithSpinner runs operation behind a terminal spinner and hands its result
// to display. With --plain callers should invoke the operation directly
// instead.
func WithSpinner(message string, operation OperationFunc, display DisplayFunc) error {
	spinnerModel := spinner.NewSpinnerModelWithMessage(message)
	program := tea.NewProgram(spinnerModel)

	go func() {
		result, err := operation()
		if err != nil {
			program.Send(err)
			return
		}
		program.Send(spinner.ResultMsg{Result: result})
	}()

	model, err := program.Run()
	if err != nil {
		return err
	}

	finalModel, ok := model.(spinner.SpinnerModel)
	if !ok {
		return fmt.Errorf("program finished with invalid model")
	}

	if finalModel.HasError() {
		return finalModel.GetError()
	}

	if display != nil && finalModel.HasResult() {
		display(finalModel.GetResult())
	}

	return nil
}
