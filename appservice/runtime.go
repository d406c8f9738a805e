package appservice

import (
	"net/url"
	"strings"
)

type PhpVersion string

const (
	PhpVersionOff PhpVersion = "OFF"
	PhpVersion74  PhpVersion = "7.4"
	PhpVersion80  PhpVersion = "8.0"
	PhpVersion81  PhpVersion = "8.1"
	PhpVersion82  PhpVersion = "8.2"
)

type JavaVersion string

const (
	JavaVersionOff JavaVersion = ""
	Java8          JavaVersion = "1.8"
	Java11         JavaVersion = "11"
	Java17         JavaVersion = "17"
)

// WebContainer is a Java web container and version separated by a space, e.g. "TOMCAT 9.0".
type WebContainer string

const (
	Tomcat85  WebContainer = "TOMCAT 8.5"
	Tomcat90  WebContainer = "TOMCAT 9.0"
	Tomcat100 WebContainer = "TOMCAT 10.0"
	Jetty93   WebContainer = "JETTY 9.3"
	JavaSE    WebContainer = "JAVA SE"
)

func (c WebContainer) split() (string, string) {
	container, version, _ := strings.Cut(strings.TrimSpace(string(c)), " ")
	return container, version
}

type NetFrameworkVersion string

const (
	NetFramework4 NetFrameworkVersion = "v4.0"
	NetCore6      NetFrameworkVersion = "v6.0"
	NetCore7      NetFrameworkVersion = "v7.0"
)

type PythonVersion string

const (
	PythonVersionOff PythonVersion = ""
	Python27         PythonVersion = "2.7"
	Python34         PythonVersion = "3.4"
)

// RuntimeStack is a built-in Linux image, rendered as LinuxFxVersion "STACK|VERSION".
type RuntimeStack struct {
	Stack   string
	Version string
}

var (
	NodeJS18    = RuntimeStack{Stack: "NODE", Version: "18-lts"}
	NodeJS20    = RuntimeStack{Stack: "NODE", Version: "20-lts"}
	Python311   = RuntimeStack{Stack: "PYTHON", Version: "3.11"}
	Php82       = RuntimeStack{Stack: "PHP", Version: "8.2"}
	DotNet7     = RuntimeStack{Stack: "DOTNETCORE", Version: "7.0"}
	Java17SE    = RuntimeStack{Stack: "JAVA", Version: "17-java17"}
	Tomcat10J17 = RuntimeStack{Stack: "TOMCAT", Version: "10.0-java17"}
)

func (r RuntimeStack) String() string {
	return r.Stack + "|" + r.Version
}

const dockerPrefix = "DOCKER|"

// SmartCompletionPrivateRegistryImage prefixes an image with the registry host unless its first
// path segment already names a registry.
func SmartCompletionPrivateRegistryImage(image, serverURL string) string {
	registry := serverURL
	if parsed, err := url.Parse(serverURL); err == nil && parsed.Host != "" {
		registry = parsed.Host
	}
	first, _, _ := strings.Cut(image, "/")
	if strings.Contains(first, registry) || strings.Contains(first, ".") {
		return image
	}
	return registry + "/" + image
}
