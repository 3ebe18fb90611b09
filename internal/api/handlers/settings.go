package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lingosub/backend/internal/db"
	"github.com/lingosub/backend/internal/subtitle/translate"
)

// settingsKeys defines which keys are allowed and their display metadata
var settingsKeys = []SettingDef{
	{Key: "default_target_lang", Label: "Default Target Language", Group: "translation", Placeholder: "ko", Secret: false},
	{Key: "default_batch_size", Label: "Batch Size", Group: "translation", Placeholder: "10", Secret: false},
	{Key: "default_preset", Label: "Default Style", Group: "translation", Placeholder: "general", Secret: false},
}

type SettingDef struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Group       string `json:"group"`
	Placeholder string `json:"placeholder"`
	Secret      bool   `json:"secret"`
}

type SettingsHandler struct {
	database *db.Database
}

func NewSettingsHandler(database *db.Database) *SettingsHandler {
	return &SettingsHandler{database: database}
}

// GetSettings returns all settings (secrets are masked)
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.database.GetAllSettings()
	if err != nil {
		jsonError(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	// Build response with metadata and masked values
	type SettingResponse struct {
		SettingDef
		Value    string `json:"value"`
		HasValue bool   `json:"has_value"`
	}

	var result []SettingResponse
	for _, def := range settingsKeys {
		val := all[def.Key]
		masked := val
		hasValue := val != ""
		if def.Secret && hasValue {
			// Show only last 4 chars
			if len(val) > 4 {
				masked = "••••••••" + val[len(val)-4:]
			} else {
				masked = "••••••••"
			}
		}
		result = append(result, SettingResponse{
			SettingDef: def,
			Value:      masked,
			HasValue:   hasValue,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// UpdateSettings saves settings from the request body
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Validate keys — only allow known settings
	allowed := make(map[string]bool)
	for _, def := range settingsKeys {
		allowed[def.Key] = true
	}

	for key, value := range updates {
		if !allowed[key] {
			continue
		}
		// A masked value is the UI echoing a secret back; never store it
		if strings.HasPrefix(value, "••••••••") {
			continue
		}
		if err := validateSetting(key, value); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.database.SetSetting(key, value); err != nil {
			jsonError(w, "failed to save setting: "+key, http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// validateSetting rejects values that would break a later translation
// run. Empty always passes: it clears the setting.
func validateSetting(key, value string) error {
	if value == "" {
		return nil
	}
	switch key {
	case "default_batch_size":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("default_batch_size must be a positive number")
		}
	case "default_preset":
		switch value {
		case translate.PresetGeneral, translate.PresetDialogue, translate.PresetDocumentary, translate.PresetCustom:
		default:
			return fmt.Errorf("unknown preset: %s", value)
		}
	}
	return nil
}
