package entities

// Default descriptor policy literals for TeamCity plugins
const (
	DefaultDescriptorFile    = "teamcity-plugin.xml"
	DefaultRootElement       = "teamcity-plugin"
	DefaultVendorName        = "JetBrains"
	DefaultVendorURLSecure   = "https://www.jetbrains.com"
	DefaultVendorURLInsecure = "http://www.jetbrains.com"
	DefaultArchiveExtension  = ".zip"

	// DefaultMaxDescriptorSize bounds how much of a descriptor is read into memory
	DefaultMaxDescriptorSize int64 = 16 << 20
)

// Descriptor paths relative to the root element
const (
	VersionPath    = "info/version"
	VendorNamePath = "info/vendor/name"
	VendorURLPath  = "info/vendor/url"
)

// DescriptorPolicy holds the literals the descriptor rules check against
type DescriptorPolicy struct {
	FileName          string
	RootElement       string
	VendorName        string
	VendorURLSecure   string
	VendorURLInsecure string
	ArchiveExtensions []string
	MaxSize           int64
}

// DefaultDescriptorPolicy returns the policy for JetBrains TeamCity plugins
func DefaultDescriptorPolicy() DescriptorPolicy {
	return DescriptorPolicy{
		FileName:          DefaultDescriptorFile,
		RootElement:       DefaultRootElement,
		VendorName:        DefaultVendorName,
		VendorURLSecure:   DefaultVendorURLSecure,
		VendorURLInsecure: DefaultVendorURLInsecure,
		ArchiveExtensions: []string{DefaultArchiveExtension},
		MaxSize:           DefaultMaxDescriptorSize,
	}
}

// TextField is a descriptor value that may be absent
type TextField struct {
	Value   string
	Present bool
}

// Descriptor is the parsed content of a plugin descriptor file
type Descriptor struct {
	RootElement string
	Version     TextField
	VendorName  TextField
	VendorURL   TextField
}

// DescriptorCheck is the outcome of validating one descriptor
type DescriptorCheck struct {
	Version      string
	VersionFound bool
	Advisories   []Advisory
}
