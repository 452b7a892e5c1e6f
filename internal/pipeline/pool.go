package pipeline

// Pipeline names and IaaS types with special handling.
const (
	PipelineInternetless = "internetless"
	PipelineAWSUpgrade   = "aws-upgrade"

	IaaSAWS     = "aws"
	IaaSVCloud  = "vcloud"
	IaaSVSphere = "vsphere"

	poolAWSEast = "aws-east"
)

// EnvironmentPool returns the environment pool a pipeline claims its
// environment from. Internetless pipelines use their own pool, the AWS
// upgrade pipeline runs in aws-east, everything else uses the IaaS pool.
func EnvironmentPool(pipelineName, iaasType string) string {
	switch pipelineName {
	case PipelineInternetless:
		return PipelineInternetless
	case PipelineAWSUpgrade:
		return poolAWSEast
	default:
		return iaasType
	}
}
