package feedback

import (
	"github.com/yashas004/persona/internal/metrics"
	"github.com/yashas004/persona/pkg/provider/coach"
)

// Heuristic builds a feedback report from a fixed threshold table. It is
// fully deterministic and total: for any metric input it returns a valid
// report with non-empty strengths and areas_to_improve.
func Heuristic(facial metrics.FacialMetrics, audio *metrics.AudioMetrics) *coach.Report {
	report := &coach.Report{
		ExpressionScore: expressionScore(facial),
	}

	if facial.EyeMovement > 70 {
		report.Strengths = append(report.Strengths, "Good eye expressiveness")
	}
	if facial.ExpressionDiversity > 70 {
		report.Strengths = append(report.Strengths, "Excellent expression variety")
	}
	if facial.HeadPosition > 70 {
		report.Strengths = append(report.Strengths, "Confident head positioning")
	}
	if facial.MouthMovement < 60 {
		report.AreasToImprove = append(report.AreasToImprove, "Facial expressions")
		report.Tips = append(report.Tips, "Be more expressive with your mouth when you speak")
	}
	if facial.EyeMovement < 50 {
		report.AreasToImprove = append(report.AreasToImprove, "Eye engagement")
		report.Tips = append(report.Tips, "Keep your eyes engaged with the camera")
	}
	if facial.HeadPosition < 50 {
		report.AreasToImprove = append(report.AreasToImprove, "Head positioning")
		report.Tips = append(report.Tips, "Hold your head steady and centered in the frame")
	}

	if audio != nil {
		vs := voiceScore(*audio)
		report.VoiceScore = &vs

		if audio.PitchVariation > 70 {
			report.Strengths = append(report.Strengths, "Dynamic vocal variety")
		}
		if audio.Clarity > 80 {
			report.Strengths = append(report.Strengths, "Clear articulation")
		}
		if audio.SpeechRate < 50 {
			report.AreasToImprove = append(report.AreasToImprove, "Speaking pace")
			report.Tips = append(report.Tips, "Try speaking a bit faster to keep energy up")
		} else if audio.SpeechRate > 85 {
			report.AreasToImprove = append(report.AreasToImprove, "Speaking pace")
			report.Tips = append(report.Tips, "Slow down slightly so each word lands")
		}
		if audio.Volume < 30 {
			report.AreasToImprove = append(report.AreasToImprove, "Voice projection")
			report.Tips = append(report.Tips, "Project your voice more, speak from the diaphragm")
		}

		report.OverallScore = (report.ExpressionScore + vs) / 2
	} else {
		report.OverallScore = report.ExpressionScore
	}

	if len(report.Strengths) == 0 {
		report.Strengths = append(report.Strengths, "Consistent delivery")
	}
	if len(report.AreasToImprove) == 0 {
		report.AreasToImprove = append(report.AreasToImprove, "Fine-tuning your natural style")
		report.Tips = append(report.Tips, "Experiment with varying your expressions between sessions")
	}

	return report
}
