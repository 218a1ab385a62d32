package service

import (
	"encoding/json"
	"fmt"

	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/history"
	"whiteboard-backend/internal/model"
	"whiteboard-backend/internal/scene"
)

// encodeDocument 요소/상태를 JSON 컬럼 값으로 변환
func encodeDocument(meta *model.Scene, elements []element.Element, appState scene.AppState) error {
	if elements == nil {
		elements = []element.Element{}
	}
	elementsJSON, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("encode elements: %w", err)
	}
	appStateJSON, err := json.Marshal(appState)
	if err != nil {
		return fmt.Errorf("encode app state: %w", err)
	}
	meta.Elements = string(elementsJSON)
	meta.AppState = string(appStateJSON)
	return nil
}

// encodeHistory 스택을 저장 행으로 변환 (Position 은 스택 바닥부터)
func encodeHistory(h *history.History) ([]model.SceneHistoryEntry, error) {
	undo, redo := h.Stacks()
	entries := make([]model.SceneHistoryEntry, 0, len(undo)+len(redo))

	add := func(stack model.HistoryStack, list []history.Entry) error {
		for i, e := range list {
			elementsJSON, err := json.Marshal(e.Elements)
			if err != nil {
				return fmt.Errorf("encode history elements: %w", err)
			}
			appStateJSON, err := json.Marshal(e.AppState)
			if err != nil {
				return fmt.Errorf("encode history app state: %w", err)
			}
			entries = append(entries, model.SceneHistoryEntry{
				Stack:    stack.String(),
				Position: i,
				Elements: string(elementsJSON),
				AppState: string(appStateJSON),
			})
		}
		return nil
	}

	if err := add(model.HistoryStackUndo, undo); err != nil {
		return nil, err
	}
	if err := add(model.HistoryStackRedo, redo); err != nil {
		return nil, err
	}
	return entries, nil
}

// decodeHistory 저장 행을 스택으로 복원 (Position 순서 유지)
func decodeHistory(rows []model.SceneHistoryEntry) (undo, redo []history.Entry, err error) {
	for _, row := range rows {
		var e history.Entry
		if err := json.Unmarshal([]byte(row.Elements), &e.Elements); err != nil {
			return nil, nil, fmt.Errorf("%w: history elements: %v", ErrInvalidScene, err)
		}
		if err := json.Unmarshal([]byte(row.AppState), &e.AppState); err != nil {
			return nil, nil, fmt.Errorf("%w: history app state: %v", ErrInvalidScene, err)
		}

		switch model.HistoryStack(row.Stack) {
		case model.HistoryStackUndo:
			undo = append(undo, e)
		case model.HistoryStackRedo:
			redo = append(redo, e)
		default:
			return nil, nil, fmt.Errorf("%w: unknown history stack %q", ErrInvalidScene, row.Stack)
		}
	}
	return undo, redo, nil
}
