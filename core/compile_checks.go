package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ RequestLocker       = (*MemoryRequestLocker)(nil)
	_ ProvisionDispatcher = (*GoroutineDispatcher)(nil)
	_ MetricsRecorder     = NopMetricsRecorder{}
	_ ConfigProvider      = (*CfgxConfigProvider)(nil)
	_ OptionsResolver     = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
