package scaffolding

// Placeholder names shipped templates may use. The set is closed: a template
// using any other name fails validation.
const (
	TokenProjectName          = "PROJECT_NAME"
	TokenScheme               = "SCHEME"
	TokenProjectArgs          = "PROJECT_ARGS"
	TokenBundleIDRoot         = "BUNDLE_ID_ROOT"
	TokenDeploymentTarget     = "DEPLOYMENT_TARGET"
	TokenSwiftVersion         = "SWIFT_VERSION"
	TokenHostArch             = "HOST_ARCH"
	TokenVCSProvider          = "VCS_PROVIDER"
	TokenSimulatorDevice      = "SIMULATOR_DEVICE"
	TokenSimulatorOS          = "SIMULATOR_OS"
	TokenSimulatorArch        = "SIMULATOR_ARCH"
	TokenSimulatorDestination = "SIMULATOR_DESTINATION"
	TokenBuildConfiguration   = "BUILD_CONFIGURATION"
	TokenXcodeVersion         = "XCODE_VERSION"
	TokenCIRunner             = "CI_RUNNER"
	TokenLintStrict           = "LINT_STRICT"
	TokenTemplateName         = "TEMPLATE_NAME"
	TokenTemplateTitle        = "TEMPLATE_TITLE"
	TokenToolVersion          = "XCBOOT_VERSION"
)

// Vocabulary lists every placeholder name in declaration order.
var Vocabulary = []string{
	TokenProjectName,
	TokenScheme,
	TokenProjectArgs,
	TokenBundleIDRoot,
	TokenDeploymentTarget,
	TokenSwiftVersion,
	TokenHostArch,
	TokenVCSProvider,
	TokenSimulatorDevice,
	TokenSimulatorOS,
	TokenSimulatorArch,
	TokenSimulatorDestination,
	TokenBuildConfiguration,
	TokenXcodeVersion,
	TokenCIRunner,
	TokenLintStrict,
	TokenTemplateName,
	TokenTemplateTitle,
	TokenToolVersion,
}

// InVocabulary reports whether name is a known placeholder.
func InVocabulary(name string) bool {
	for _, v := range Vocabulary {
		if v == name {
			return true
		}
	}
	return false
}

// Missing returns the vocabulary names b does not bind.
func (b Bindings) Missing() []string {
	var missing []string
	for _, name := range Vocabulary {
		if _, ok := b[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
