package domain

// Quality is a learner's self-reported recall grade for one review,
// from 0 (total failure to recall) to 5 (perfect, effortless recall).
type Quality int

// Grade scale boundaries and named points.
const (
	QualityBlackout  Quality = 0 // no recall at all
	QualityWrong     Quality = 1 // wrong, but recognised once shown
	QualityHardWrong Quality = 2 // wrong, answer felt familiar
	QualityHard      Quality = 3 // correct with serious difficulty
	QualityGood      Quality = 4 // correct after some hesitation
	QualityPerfect   Quality = 5 // perfect recall

	MinQuality = QualityBlackout
	MaxQuality = QualityPerfect
)

// Validate returns an *InvalidGradeError if q is outside [0,5].
func (q Quality) Validate() error {
	if q < MinQuality || q > MaxQuality {
		return &InvalidGradeError{Quality: int(q)}
	}
	return nil
}
