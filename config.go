package press

import "github.com/goliatone/go-press/internal/runtimeconfig"

var (
	ErrContentDirRequired           = runtimeconfig.ErrContentDirRequired
	ErrGeneratorOutputDirRequired   = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrTemplatesDirRequired         = runtimeconfig.ErrTemplatesDirRequired
	ErrGeneratorWorkersInvalid      = runtimeconfig.ErrGeneratorWorkersInvalid
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	SiteConfig      = runtimeconfig.SiteConfig
	ContentConfig   = runtimeconfig.ContentConfig
	ParserConfig    = runtimeconfig.ParserConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	Features        = runtimeconfig.Features
	CommandsConfig  = runtimeconfig.CommandsConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)
