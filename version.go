package tenancy

// BuildVersion is set by the build system
var BuildVersion = "{}"
