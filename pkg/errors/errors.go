// Package errors は診断エンジン全体のエラーハンドリングと警告システムを提供します。
// 分析は同期的な純粋計算のため、エラーはすべてその場で返され、リトライ対象にはなりません。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex sync.Mutex
	// SetWarningHandler で設定された呼び出し側のハンドラ（未設定なら nil）
	warningHandler func(w error)
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
// 設定されたハンドラは zerolog より優先され、各アナライザーが発生させる
// DegenerateVarianceWarning などもすべてこのハンドラに渡されます。
// nil を渡すとデフォルトの経路に戻ります。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// HandleWarning は SetWarningHandler でハンドラが設定されていれば w を渡し、true を返します。
func HandleWarning(w error) bool {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if warningHandler == nil {
		return false
	}
	warningHandler(w)
	return true
}

// Warn は警告を発生させます。
// 呼び出し側のハンドラ、zerolog、標準エラー出力の順に最初に利用可能な経路へ出力します。
func Warn(w error) {
	if HandleWarning(w) {
		return
	}

	warningMutex.Lock()
	defer warningMutex.Unlock()
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	log.Printf("modeldiag-Warning: %v\n", w)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrInsufficientData は統計量の計算に必要なサンプル数が不足している場合のエラーです。
	ErrInsufficientData = New("insufficient data")

	// ErrDegenerateVariance は分散が0で比率が定義できない場合のエラーです。
	ErrDegenerateVariance = New("degenerate variance")

	// ErrMalformedInput は呼び出し側の入力が不正な場合のエラーです。
	ErrMalformedInput = New("malformed input")
)

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// InsufficientDataError は fold が0件、行が1件しかない等、
// 統計量に必要な最小サンプル数を満たさない場合のエラーです。
type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("modeldiag: %s: insufficient data: need at least %d samples, got %d", e.Op, e.Need, e.Got)
}

// Is は ErrInsufficientData との比較を可能にします。
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InsufficientDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("need", e.Need).
		Int("got", e.Got).
		Str("type", "InsufficientDataError")
}

// NewInsufficientDataError は新しいInsufficientDataErrorを作成し、スタックトレースを付与します。
func NewInsufficientDataError(op string, need, got int) error {
	err := &InsufficientDataError{Op: op, Need: need, Got: got}
	return errors.WithStack(err)
}

// DegenerateVarianceError は列または fold 集合の分散が0の場合のエラーです。
// 相関や信頼区間は通常フォールバック値で処理されますが、
// 呼び出し側が厳格なモードを要求した場合にこのエラーが返されます。
type DegenerateVarianceError struct {
	Op      string
	Feature string
}

func (e *DegenerateVarianceError) Error() string {
	return fmt.Sprintf("modeldiag: %s: zero variance in %q", e.Op, e.Feature)
}

// Is は ErrDegenerateVariance との比較を可能にします。
func (e *DegenerateVarianceError) Is(target error) bool {
	return target == ErrDegenerateVariance
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegenerateVarianceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("feature", e.Feature).
		Str("type", "DegenerateVarianceError")
}

// NewDegenerateVarianceError は新しいDegenerateVarianceErrorを作成し、スタックトレースを付与します。
func NewDegenerateVarianceError(op, feature string) error {
	err := &DegenerateVarianceError{Op: op, Feature: feature}
	return errors.WithStack(err)
}

// MalformedInputError はヘッダーと列数の不一致や、ドット区切りキーの基底名が空の場合など、
// 呼び出し側の誤りを示すエラーです。回復は想定しません。
type MalformedInputError struct {
	Op     string
	Reason string
	Value  interface{}
}

func (e *MalformedInputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("modeldiag: %s: malformed input: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("modeldiag: %s: malformed input: %s (got: %v)", e.Op, e.Reason, e.Value)
}

// Is は ErrMalformedInput との比較を可能にします。
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MalformedInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "MalformedInputError")
}

// NewMalformedInputError は新しいMalformedInputErrorを作成し、スタックトレースを付与します。
func NewMalformedInputError(op, reason string, value interface{}) error {
	err := &MalformedInputError{Op: op, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
// MalformedInput の一種として扱われます。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("modeldiag: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, axisName(e.Axis), e.Expected, e.Got)
}

// Is は ErrMalformedInput との比較を可能にします。
func (e *DimensionError) Is(target error) bool {
	return target == ErrMalformedInput
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName(e.Axis)).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

func axisName(axis int) string {
	if axis == 0 {
		return "rows"
	}
	return "features"
}

// NotFittedError は Fit 前に Transform を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("modeldiag: %s: not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DegenerateVarianceWarning は分散0の列に対してフォールバック値を使用したことを知らせる警告です。
type DegenerateVarianceWarning struct {
	Op       string
	Feature  string
	Fallback float64
}

func (w *DegenerateVarianceWarning) Error() string {
	return fmt.Sprintf("%s: %q has zero variance; correlation set to %g", w.Op, w.Feature, w.Fallback)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DegenerateVarianceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Str("feature", w.Feature).
		Float64("fallback", w.Fallback).
		Str("type", "DegenerateVarianceWarning")
}

// NewDegenerateVarianceWarning は新しいDegenerateVarianceWarningを作成します。
func NewDegenerateVarianceWarning(op, feature string, fallback float64) *DegenerateVarianceWarning {
	return &DegenerateVarianceWarning{Op: op, Feature: feature, Fallback: fallback}
}

// SingleFoldWarning は fold が1件のみで標準偏差を0として扱ったことを知らせる警告です。
type SingleFoldWarning struct {
	Metric string
}

func (w *SingleFoldWarning) Error() string {
	return fmt.Sprintf("metric %q has a single fold; stddev and ci95 reported as 0", w.Metric)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *SingleFoldWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("type", "SingleFoldWarning")
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
