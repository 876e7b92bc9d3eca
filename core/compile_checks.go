package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CredentialCodec              = RawURLCodec{}
	_ CredentialCodec              = PaddedURLCodec{}
	_ RefreshTokenCredentialIssuer = RefreshTokenCredentialIssuerFunc(nil)
	_ Result                       = SuccessResult{}
	_ Result                       = ErrorResult{}
	_ Result                       = ChallengeResult{}
	_ ConfigProvider               = (*CfgxConfigProvider)(nil)
	_ OptionsResolver              = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
