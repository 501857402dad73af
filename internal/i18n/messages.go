package i18n

var english = map[string]string{
	"project.node.program_type":           "Program Type",
	"project.node.spark_version":          "Spark Version",
	"project.node.main_class":             "Main Class",
	"project.node.main_class_tips":        "Please enter main class",
	"project.node.main_package":           "Main Package",
	"project.node.main_package_tips":      "Please select main package",
	"project.node.deploy_mode":            "Deploy Mode",
	"project.node.app_name":               "App Name",
	"project.node.app_name_tips":          "Please enter app name(optional)",
	"project.node.driver_cores":           "Driver Cores",
	"project.node.driver_cores_tips":      "Please enter Driver cores",
	"project.node.driver_memory":          "Driver Memory",
	"project.node.driver_memory_tips":     "Please enter Driver memory",
	"project.node.executor_number":        "Executor Number",
	"project.node.executor_number_tips":   "Please enter Executor number",
	"project.node.executor_memory":        "Executor Memory",
	"project.node.executor_memory_tips":   "Please enter Executor memory",
	"project.node.executor_cores":         "Executor Cores",
	"project.node.executor_cores_tips":    "Please enter Executor cores",
	"project.node.main_arguments":         "Main Arguments",
	"project.node.main_arguments_tips":    "Please enter main arguments",
	"project.node.option_parameters":      "Option Parameters",
	"project.node.option_parameters_tips": "Please enter option parameters",
	"project.node.resources":              "Resources",
	"project.node.resources_tips":         "Please select resources",
	"project.node.custom_parameters":      "Custom Parameters",
	"project.node.prop_tips":              "prop(required)",
	"project.node.prop_repeat":            "prop is repeat",
	"project.node.value_tips":             "value(optional)",
	"project.node.positive_integer_tips":  " should be a positive integer",
}

var simplifiedChinese = map[string]string{
	"project.node.program_type":           "程序类型",
	"project.node.spark_version":          "Spark版本",
	"project.node.main_class":             "主函数的Class",
	"project.node.main_class_tips":        "请填写主函数的Class",
	"project.node.main_package":           "主程序包",
	"project.node.main_package_tips":      "请选择主程序包",
	"project.node.deploy_mode":            "部署方式",
	"project.node.app_name":               "任务名称",
	"project.node.app_name_tips":          "请输入任务名称(选填)",
	"project.node.driver_cores":           "Driver核心数",
	"project.node.driver_cores_tips":      "请输入Driver核心数",
	"project.node.driver_memory":          "Driver内存数",
	"project.node.driver_memory_tips":     "请输入Driver内存数",
	"project.node.executor_number":        "Executor数量",
	"project.node.executor_number_tips":   "请输入Executor数量",
	"project.node.executor_memory":        "Executor内存数",
	"project.node.executor_memory_tips":   "请输入Executor内存数",
	"project.node.executor_cores":         "Executor核心数",
	"project.node.executor_cores_tips":    "请输入Executor核心数",
	"project.node.main_arguments":         "主程序参数",
	"project.node.main_arguments_tips":    "请输入主程序参数",
	"project.node.option_parameters":      "选项参数",
	"project.node.option_parameters_tips": "请输入选项参数",
	"project.node.resources":              "资源",
	"project.node.resources_tips":         "请选择资源",
	"project.node.custom_parameters":      "自定义参数",
	"project.node.prop_tips":              "prop(必填)",
	"project.node.prop_repeat":            "prop中有重复",
	"project.node.value_tips":             "value(选填)",
	"project.node.positive_integer_tips":  "应为正整数",
}
