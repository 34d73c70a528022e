package hardware

// Tier names a hardware class and the models suggested for it.
type Tier struct {
	Name                 string `json:"tier"`
	RecommendedModel     string `json:"recommended_model"`
	RecommendedModelSize string `json:"recommended_model_size"`
	SecondaryModel       string `json:"secondary_model"`
}

const (
	TierGodMode = "god-mode"
	TierPro     = "pro"
	TierStarter = "starter"
	TierEco     = "eco"
)

// Recommend classifies s. gpuFallback reports that only a software GPU
// adapter is available, which rules out the top tier.
func Recommend(s Snapshot, gpuFallback bool) Tier {
	mem := s.TotalMemoryMB
	switch {
	case mem >= 48000 && s.CPUs >= 12 && !gpuFallback:
		return Tier{
			Name:                 TierGodMode,
			RecommendedModel:     "Qwen2.5-Coder-32B-Instruct-q4_K_M",
			RecommendedModelSize: "18.2 GB",
			SecondaryModel:       "Codestral-22B-v0.1-q4_K_M",
		}
	case mem >= 16000 && s.CPUs >= 8:
		return Tier{
			Name:                 TierPro,
			RecommendedModel:     "Codestral-22B-v0.1-q4_K_M",
			RecommendedModelSize: "13.4 GB",
			SecondaryModel:       "Qwen2.5-Coder-7B-Instruct-q4_K_M",
		}
	case mem >= 8000:
		return Tier{
			Name:                 TierStarter,
			RecommendedModel:     "Qwen2.5-Coder-7B-Instruct-q4_K_M",
			RecommendedModelSize: "4.8 GB",
			SecondaryModel:       "DeepSeek-Coder-V2-Lite-Instruct-q4_K_M",
		}
	default:
		return Tier{
			Name:                 TierEco,
			RecommendedModel:     "DeepSeek-Coder-V2-Lite-Instruct-q4_K_M",
			RecommendedModelSize: "2.5 GB",
			SecondaryModel:       "Llama-3.2-1B-Instruct-q4f16_1-MLC",
		}
	}
}
