package handler

type ContextKey string

var (
	SubCtxKey        ContextKey = "sub"
	MyInfoCtx        ContextKey = "myInfo"
	ActorCtx         ContextKey = "actor"
	UserInfoCtx      ContextKey = "userInfo"
	ShiftTemplateCtx ContextKey = "shiftTemplate"
	CourseCtx        ContextKey = "course"
)
