// Package metrics は fold ごとの評価指標を計算する。
//
// 多クラス分類では MicroAccuracy・MacroAccuracy・LogLoss・LogLossReduction を、
// 回帰では MSE・RMSE・MAE・R² を提供する。どちらも AsMap で
// crossval.SummarizeFolds にそのまま渡せる形に変換できる。
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// 多クラス分類指標の名前
const (
	MetricMicroAccuracy    = "MicroAccuracy"
	MetricMacroAccuracy    = "MacroAccuracy"
	MetricLogLoss          = "LogLoss"
	MetricLogLossReduction = "LogLossReduction"
)

// MulticlassMetricNames は表示順に並べた多クラス分類指標の名前
var MulticlassMetricNames = []string{
	MetricMicroAccuracy,
	MetricMacroAccuracy,
	MetricLogLoss,
	MetricLogLossReduction,
}

// checkLabels は正解ラベルと確率行列を検証し、クラス数を返す
func checkLabels(op string, yTrue []int, proba [][]float64) (int, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewInsufficientDataError(op, 1, 0)
	}
	if len(proba) != n {
		return 0, errors.NewDimensionError(op, n, len(proba), 0)
	}
	k := len(proba[0])
	if k == 0 {
		return 0, errors.NewMalformedInputError(op, "probability rows are empty", nil)
	}
	for i, row := range proba {
		if len(row) != k {
			return 0, errors.NewDimensionError(op, k, len(row), 1)
		}
		if err := errors.CheckFinite(fmt.Sprintf("%s.proba[%d]", op, i), row); err != nil {
			return 0, err
		}
		if yTrue[i] < 0 || yTrue[i] >= k {
			return 0, errors.NewMalformedInputError(op, fmt.Sprintf("label at index %d out of range [0, %d)", i, k), yTrue[i])
		}
	}
	return k, nil
}

// Predict は各行の確率が最大のクラスを返す。同率の場合は小さい番号のクラスを選ぶ。
func Predict(proba [][]float64) []int {
	out := make([]int, len(proba))
	for i, row := range proba {
		if len(row) > 0 {
			out[i] = floats.MaxIdx(row)
		}
	}
	return out
}

// ConfusionMatrix は k×k の混同行列を返す。行が正解、列が予測クラス。
func ConfusionMatrix(yTrue []int, proba [][]float64) (*mat.Dense, error) {
	k, err := checkLabels("ConfusionMatrix", yTrue, proba)
	if err != nil {
		return nil, err
	}
	cm := mat.NewDense(k, k, nil)
	for i, p := range Predict(proba) {
		cm.Set(yTrue[i], p, cm.At(yTrue[i], p)+1)
	}
	return cm, nil
}

// MicroAccuracy は全サンプルに対する正解率を計算する
func MicroAccuracy(yTrue []int, proba [][]float64) (float64, error) {
	cm, err := ConfusionMatrix(yTrue, proba)
	if err != nil {
		return 0, err
	}
	return microFromConfusion(cm), nil
}

func microFromConfusion(cm *mat.Dense) float64 {
	return mat.Trace(cm) / mat.Sum(cm)
}

// MacroAccuracy はクラスごとの正解率（再現率）の平均を計算する。
// yTrue に現れないクラスは平均から除外する。
func MacroAccuracy(yTrue []int, proba [][]float64) (float64, error) {
	cm, err := ConfusionMatrix(yTrue, proba)
	if err != nil {
		return 0, err
	}
	return macroFromConfusion(cm), nil
}

func macroFromConfusion(cm *mat.Dense) float64 {
	k, _ := cm.Dims()
	var sum float64
	present := 0
	for c := 0; c < k; c++ {
		support := floats.Sum(cm.RawRowView(c))
		if support == 0 {
			continue
		}
		sum += cm.At(c, c) / support
		present++
	}
	return errors.SafeDivide(sum, float64(present), 0)
}

// LogLoss は正解クラスの確率の負の対数尤度の平均を計算する。
// 確率は StabilizeLog で下限 1e-15 にクリップする。
func LogLoss(yTrue []int, proba [][]float64) (float64, error) {
	if _, err := checkLabels("LogLoss", yTrue, proba); err != nil {
		return 0, err
	}
	return logLoss(yTrue, proba), nil
}

func logLoss(yTrue []int, proba [][]float64) float64 {
	var sum float64
	for i, y := range yTrue {
		sum -= errors.StabilizeLog(proba[i][y])
	}
	return sum / float64(len(yTrue))
}

// priorLogLoss は yTrue のクラス分布をそのまま予測した場合の LogLoss（エントロピー）
func priorLogLoss(yTrue []int, k int) float64 {
	counts := make([]float64, k)
	for _, y := range yTrue {
		counts[y]++
	}
	n := float64(len(yTrue))
	var h float64
	for _, c := range counts {
		if c > 0 {
			p := c / n
			h -= p * math.Log(p)
		}
	}
	return h
}

// LogLossReduction は事前分布に対する LogLoss の相対的な改善を計算する。
//
//	LogLossReduction = 1 - LogLoss / LogLoss(prior)
//
// yTrue が1クラスのみの場合、事前分布の LogLoss は0となり
// DegenerateVarianceError を返す。
func LogLossReduction(yTrue []int, proba [][]float64) (float64, error) {
	k, err := checkLabels("LogLossReduction", yTrue, proba)
	if err != nil {
		return 0, err
	}
	return logLossReduction(yTrue, proba, k)
}

func logLossReduction(yTrue []int, proba [][]float64, k int) (float64, error) {
	prior := priorLogLoss(yTrue, k)
	if prior == 0 {
		return 0, errors.NewDegenerateVarianceError("LogLossReduction", "yTrue")
	}
	return 1 - logLoss(yTrue, proba)/prior, nil
}

// MulticlassMetrics は1つの fold の多クラス分類指標をまとめたもの
type MulticlassMetrics struct {
	MicroAccuracy    float64
	MacroAccuracy    float64
	LogLoss          float64
	LogLossReduction float64
	// ConfusionMatrix は行が正解、列が予測クラス
	ConfusionMatrix *mat.Dense
}

// EvaluateMulticlass は多クラス分類の全指標をまとめて計算する
func EvaluateMulticlass(yTrue []int, proba [][]float64) (MulticlassMetrics, error) {
	k, err := checkLabels("EvaluateMulticlass", yTrue, proba)
	if err != nil {
		return MulticlassMetrics{}, err
	}
	cm, err := ConfusionMatrix(yTrue, proba)
	if err != nil {
		return MulticlassMetrics{}, err
	}
	reduction, err := logLossReduction(yTrue, proba, k)
	if err != nil {
		return MulticlassMetrics{}, err
	}
	return MulticlassMetrics{
		MicroAccuracy:    microFromConfusion(cm),
		MacroAccuracy:    macroFromConfusion(cm),
		LogLoss:          logLoss(yTrue, proba),
		LogLossReduction: reduction,
		ConfusionMatrix:  cm,
	}, nil
}

// AsMap は指標名をキーとするマップを返す
func (m MulticlassMetrics) AsMap() map[string]float64 {
	return map[string]float64{
		MetricMicroAccuracy:    m.MicroAccuracy,
		MetricMacroAccuracy:    m.MacroAccuracy,
		MetricLogLoss:          m.LogLoss,
		MetricLogLossReduction: m.LogLossReduction,
	}
}
