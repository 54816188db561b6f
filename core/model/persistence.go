package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// SaveModel はモデルを dir/name に保存する
//
// dir が存在しない場合は作成する（冪等）。既存のファイルは上書きされる。
// 書き込みはアトミックではないため、途中でクラッシュするとファイルが壊れる可能性がある。
//
// 戻り値:
//   - string: 書き込んだファイルのパス
//   - error: 保存に失敗した場合のエラー
//
// 使用例:
//
//	path, err := model.SaveModel(bundle, "models", "modelo_inadimplencia.gob")
func SaveModel(m interface{}, dir, name string) (string, error) {
	if name == "" {
		return "", errors.NewValidationError("name", "model file name must not be empty", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create model directory %s", dir)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create file %s", path)
	}

	if err := SaveModelToWriter(m, file); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to close file %s", path)
	}
	return path, nil
}

// LoadModel はファイルからモデルを読み込む
//
// 使用例:
//
//	var bundle training.Bundle
//	err := model.LoadModel(&bundle, "models/modelo_inadimplencia.gob")
func LoadModel(m interface{}, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s", path)
	}
	defer file.Close()

	return LoadModelFromReader(m, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(m interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(m interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
