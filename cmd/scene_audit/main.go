// scene_audit 저장된 씬 문서의 참조 무결성 점검
//
// 삭제된 요소를 가리키는 바인딩/컨테이너 참조와 남은 멤버가 없는 editingGroupId 를 보고한다.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"whiteboard-backend/internal/config"
	"whiteboard-backend/internal/database"
	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/logging"
	"whiteboard-backend/internal/scene"
)

// finding 씬 하나의 점검 결과
type finding struct {
	SceneID        string
	Dangling       []element.DanglingReference
	StaleEditGroup string
}

func main() {
	sceneID := flag.String("scene", "", "점검할 씬 ID (비어 있으면 전체)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New().Level(cfg.Log.Level).Console(true).Make()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Component("scene_audit")

	db, err := database.ConnectDB(cfg.Database, logger.Component("database"))
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close(db)

	ctx := context.Background()
	repo := database.NewSceneRepository(db)

	ids := []string{*sceneID}
	if *sceneID == "" {
		if ids, err = repo.ListSceneIDs(ctx); err != nil {
			log.Fatal().Err(err).Msg("list scenes failed")
		}
	}

	broken := 0
	for _, id := range ids {
		meta, _, err := repo.LoadScene(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("scene_id", id).Msg("load scene failed")
			continue
		}

		var elements []element.Element
		if err := json.Unmarshal([]byte(meta.Elements), &elements); err != nil {
			log.Error().Err(err).Str("scene_id", id).Msg("decode elements failed")
			continue
		}
		appState := scene.NewAppState()
		if err := json.Unmarshal([]byte(meta.AppState), &appState); err != nil {
			log.Error().Err(err).Str("scene_id", id).Msg("decode app state failed")
			continue
		}

		f := audit(id, elements, appState)
		if len(f.Dangling) == 0 && f.StaleEditGroup == "" {
			continue
		}
		broken++
		for _, ref := range f.Dangling {
			log.Warn().
				Str("scene_id", id).
				Str("element_id", ref.ElementID).
				Str("field", ref.Field).
				Str("target_id", ref.TargetID).
				Msg("reference to deleted element")
		}
		if f.StaleEditGroup != "" {
			log.Warn().Str("scene_id", id).Str("group_id", f.StaleEditGroup).Msg("editing group has no remaining members")
		}
	}

	log.Info().Int("scenes", len(ids)).Int("broken", broken).Msg("audit finished")
	if broken > 0 {
		os.Exit(2)
	}
}

func audit(sceneID string, elements []element.Element, appState scene.AppState) finding {
	f := finding{
		SceneID:  sceneID,
		Dangling: element.FindDanglingReferences(elements),
	}
	if appState.EditingGroupID != nil {
		members := element.ElementsInGroup(element.NonDeleted(elements), *appState.EditingGroupID)
		if len(members) == 0 {
			f.StaleEditGroup = *appState.EditingGroupID
		}
	}
	return f
}
