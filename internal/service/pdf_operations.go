package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"pdf-tools-server/internal/domain"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const aesKeyLength = 256

var disableConfigDirOnce sync.Once

// pdfcpu otherwise installs a config directory under the user's home on
// first use. All pdfcpu I/O must stay inside the scratch workspace.
func disablePDFCPUConfigDir() {
	disableConfigDirOnce.Do(api.DisableConfigDir)
}

// DefaultOperations returns every PDF operation the server exposes.
func DefaultOperations() []*domain.Operation {
	return []*domain.Operation{
		NewUnlockOperation(),
		NewProtectOperation(),
		NewCompressOperation(),
		NewRotateOperation(),
	}
}

// NewUnlockOperation removes the password from an encrypted PDF.
func NewUnlockOperation() *domain.Operation {
	disablePDFCPUConfigDir()
	return &domain.Operation{
		Name:           "unlock",
		Description:    "Remove the password from a protected PDF",
		RequiredParams: []string{domain.ParamPassword},
		OutputPrefix:   "unlocked",
		Transformer:    domain.TransformerFunc(decryptPDF),
	}
}

// NewProtectOperation encrypts a PDF with AES-256.
func NewProtectOperation() *domain.Operation {
	disablePDFCPUConfigDir()
	return &domain.Operation{
		Name:           "protect",
		Description:    "Protect a PDF with a password",
		RequiredParams: []string{domain.ParamPassword},
		OptionalParams: []string{domain.ParamOwnerPassword},
		OutputPrefix:   "protected",
		Transformer:    domain.TransformerFunc(encryptPDF),
	}
}

// NewCompressOperation optimizes a PDF by dropping redundant objects.
func NewCompressOperation() *domain.Operation {
	disablePDFCPUConfigDir()
	return &domain.Operation{
		Name:         "compress",
		Description:  "Reduce PDF size by removing redundant resources",
		OutputPrefix: "compressed",
		Transformer:  domain.TransformerFunc(optimizePDF),
	}
}

// NewRotateOperation rotates all or selected pages.
func NewRotateOperation() *domain.Operation {
	disablePDFCPUConfigDir()
	return &domain.Operation{
		Name:           "rotate",
		Description:    "Rotate pages by a multiple of 90 degrees",
		RequiredParams: []string{domain.ParamAngle},
		OptionalParams: []string{domain.ParamPages},
		OutputPrefix:   "rotated",
		Validate:       validateRotation,
		Transformer:    domain.TransformerFunc(rotatePDF),
	}
}

func decryptPDF(ctx context.Context, inputPath, outputPath string, params domain.Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	password := params.Raw(domain.ParamPassword)
	conf := model.NewAESConfiguration(password, password, aesKeyLength)
	if err := api.DecryptFile(inputPath, outputPath, conf); err != nil {
		return fmt.Errorf("decrypt failed: %w", err)
	}
	return nil
}

func encryptPDF(ctx context.Context, inputPath, outputPath string, params domain.Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userPW := params.Raw(domain.ParamPassword)
	ownerPW := params.Raw(domain.ParamOwnerPassword)
	if !params.Has(domain.ParamOwnerPassword) {
		ownerPW = userPW
	}
	conf := model.NewAESConfiguration(userPW, ownerPW, aesKeyLength)
	if err := api.EncryptFile(inputPath, outputPath, conf); err != nil {
		return fmt.Errorf("encrypt failed: %w", err)
	}
	return nil
}

func optimizePDF(ctx context.Context, inputPath, outputPath string, _ domain.Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.OptimizeFile(inputPath, outputPath, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}
	return nil
}

func rotatePDF(ctx context.Context, inputPath, outputPath string, params domain.Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	angle, err := strconv.Atoi(params.Get(domain.ParamAngle))
	if err != nil {
		return fmt.Errorf("invalid angle: %w", err)
	}
	pages := parsePageSelection(params.Get(domain.ParamPages))
	if err := api.RotateFile(inputPath, outputPath, angle, pages, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("rotate failed: %w", err)
	}
	return nil
}

func validateRotation(params domain.Params) *domain.ValidationError {
	angle, err := strconv.Atoi(params.Get(domain.ParamAngle))
	if err != nil {
		return &domain.ValidationError{Field: domain.ParamAngle, Message: "must be an integer"}
	}
	if angle == 0 || angle%90 != 0 || angle < -270 || angle > 270 {
		return &domain.ValidationError{Field: domain.ParamAngle, Message: "must be one of ±90, ±180, ±270"}
	}
	return nil
}

// parsePageSelection splits "1-3, 5" into pdfcpu's selection form.
// An empty selection means all pages.
func parsePageSelection(s string) []string {
	if s == "" {
		return nil
	}
	var pages []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			pages = append(pages, part)
		}
	}
	return pages
}
