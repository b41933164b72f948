package initializers

import (
	"context"

	"travel-tools-backend/config"
	"travel-tools-backend/fiberlog"
	"travel-tools-backend/lib/audit"
	companyhandler "travel-tools-backend/lib/company"
	xlsexport "travel-tools-backend/lib/export/xls"
	"travel-tools-backend/lib/notify"
	policyhandler "travel-tools-backend/lib/policy"
	travelrequesthandler "travel-tools-backend/lib/travel-request"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitSmtp()
	audit.NewHandler()
	notify.NewHandler()
	xlsexport.NewHandler()
	companyhandler.NewHandler()
	policyhandler.NewHandler()
	travelrequesthandler.NewHandler()
}
