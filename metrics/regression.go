package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// 回帰指標の名前。crossval.SummarizeFolds のキーとして使う。
const (
	MetricMSE      = "MSE"
	MetricRMSE     = "RMSE"
	MetricMAE      = "MAE"
	MetricRSquared = "RSquared"
)

// checkPair は回帰指標の入力を検証する
func checkPair(op string, yTrue, yPred []float64) error {
	n := len(yTrue)
	if n == 0 {
		return errors.NewInsufficientDataError(op, 1, 0)
	}
	if len(yPred) != n {
		return errors.NewDimensionError(op, n, len(yPred), 0)
	}
	if err := errors.CheckFinite(op+".yTrue", yTrue); err != nil {
		return err
	}
	return errors.CheckFinite(op+".yPred", yPred)
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MSE", yTrue, yPred); err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAE", yTrue, yPred); err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// R2Score は決定係数（R²）を計算する。
// yTrue の分散が0の場合は DegenerateVarianceError を返す。
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	yMean := stat.Mean(yTrue, nil)

	// 全変動（TSS）と残差変動（RSS）を計算
	var tss, rss float64
	for i := range yTrue {
		tss += (yTrue[i] - yMean) * (yTrue[i] - yMean)
		rss += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
	}

	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.NewDegenerateVarianceError("R2Score", "yTrue")
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する。yTrue が0の点は除外する。
func MAPE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAPE", yTrue, yPred); err != nil {
		return 0, err
	}

	// MAPE = (100/n) * Σ|yTrue - yPred|/|yTrue|
	var sum float64
	validCount := 0
	for i, v := range yTrue {
		if v != 0 { // ゼロ除算を避ける
			sum += math.Abs(v-yPred[i]) / math.Abs(v)
			validCount++
		}
	}

	if validCount == 0 {
		return 0, errors.NewMalformedInputError("MAPE", "all yTrue values are zero", nil)
	}
	return (sum / float64(validCount)) * 100, nil
}

// ExplainedVarianceScore は説明分散スコアを計算する
func ExplainedVarianceScore(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("ExplainedVarianceScore", yTrue, yPred); err != nil {
		return 0, err
	}

	diff := make([]float64, len(yTrue))
	for i := range yTrue {
		diff[i] = yTrue[i] - yPred[i]
	}

	// 母分散（n で割る）を使う
	varYTrue := stat.PopVariance(yTrue, nil)
	varDiff := stat.PopVariance(diff, nil)
	if varYTrue == 0 {
		return 0, errors.NewDegenerateVarianceError("ExplainedVarianceScore", "yTrue")
	}
	return 1 - varDiff/varYTrue, nil
}

// RegressionMetrics は1つの fold の回帰指標をまとめたもの
type RegressionMetrics struct {
	MSE      float64
	RMSE     float64
	MAE      float64
	RSquared float64
}

// EvaluateRegression は MSE・RMSE・MAE・R² をまとめて計算する
func EvaluateRegression(yTrue, yPred []float64) (RegressionMetrics, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}
	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}
	return RegressionMetrics{MSE: mse, RMSE: math.Sqrt(mse), MAE: mae, RSquared: r2}, nil
}

// AsMap は指標名をキーとするマップを返す
func (m RegressionMetrics) AsMap() map[string]float64 {
	return map[string]float64{
		MetricMSE:      m.MSE,
		MetricRMSE:     m.RMSE,
		MetricMAE:      m.MAE,
		MetricRSquared: m.RSquared,
	}
}
